package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("storefront config invalid")
	ErrHandleRequired  = errors.New("storefront product handle required")
	ErrProductNotFound = errors.New("storefront product not found")
	ErrCartAddFailed   = errors.New("storefront cart add failed")
	ErrResponseInvalid = errors.New("storefront response invalid")
)

const defaultTimeout = 10 * time.Second

// Config 店铺平台接口配置
type Config struct {
	BaseURL string        // 站点根地址，如 https://shop.example.com
	Timeout time.Duration // 出站请求超时，0 使用默认值
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	return nil
}

// Client 店铺平台客户端：按 handle 拉取商品、提交加购
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建客户端
func NewClient(cfg Config) (*Client, error) {
	cfg.normalize()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// FetchProduct 按 handle 拉取商品完整描述
func (c *Client) FetchProduct(ctx context.Context, handle string) (*Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, ErrHandleRequired
	}

	endpoint := fmt.Sprintf("%s/products/%s.js", c.baseURL, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: handle=%s status=%d", ErrProductNotFound, handle, resp.StatusCode)
	}

	var product Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if product.Handle == "" {
		product.Handle = handle
	}
	return &product, nil
}

// AddToCart 向购物车提交一个变体
func (c *Client) AddToCart(ctx context.Context, input AddToCartInput) (*LineItem, error) {
	if input.VariantID == 0 {
		return nil, fmt.Errorf("%w: variant id required", ErrCartAddFailed)
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}

	payload := map[string]interface{}{
		"id":       input.VariantID,
		"quantity": quantity,
	}
	if len(input.Properties) > 0 {
		payload["properties"] = input.Properties
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartAddFailed, err)
	}

	endpoint := c.baseURL + "/cart/add.js"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartAddFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartAddFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCartAddFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: variant=%d status=%d", ErrCartAddFailed, input.VariantID, resp.StatusCode)
	}

	var item LineItem
	if err := json.Unmarshal(respBody, &item); err != nil {
		// 加购已经成功，响应体不可解析时返回最小行项目
		return &LineItem{ID: input.VariantID, Quantity: quantity, Properties: input.Properties}, nil
	}
	if item.Quantity == 0 {
		item.Quantity = quantity
	}
	return &item, nil
}
