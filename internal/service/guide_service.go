package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/giftguide-next/internal/constants"
	"github.com/giftguide-next/internal/guide"
	"github.com/giftguide-next/internal/logger"
	"github.com/giftguide-next/internal/models"
	"github.com/giftguide-next/internal/queue"
	"github.com/giftguide-next/internal/storefront"
)

// CatalogClient 商品目录客户端接口
type CatalogClient interface {
	FetchProduct(ctx context.Context, handle string) (*storefront.Product, error)
}

// CartClient 购物车客户端接口
type CartClient interface {
	AddToCart(ctx context.Context, input storefront.AddToCartInput) (*storefront.LineItem, error)
}

// ProductView 商品展示信息
type ProductView struct {
	Handle      string              `json:"handle"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Price       models.Money        `json:"price"`
	Currency    string              `json:"currency"`
	Media       []storefront.Media  `json:"media"`
	Options     []storefront.Option `json:"options"`
}

// VariantView 已解析变体展示信息
type VariantView struct {
	ID        int64        `json:"id"`
	Price     models.Money `json:"price"`
	Available bool         `json:"available"`
}

// SessionView 会话快照（界面据此渲染）
type SessionView struct {
	ID          string            `json:"id"`
	State       string            `json:"state"`
	ErrorCode   string            `json:"error_code,omitempty"`
	Quantity    int               `json:"quantity"`
	Selection   map[string]string `json:"selection"`
	Product     *ProductView      `json:"product,omitempty"`
	Variant     *VariantView      `json:"variant,omitempty"`
	Purchasable bool              `json:"purchasable"`
	// DisplayPrice 当前应展示的价格：已解析变体的价格，否则商品基础价
	DisplayPrice models.Money `json:"display_price"`
	Currency     string       `json:"currency,omitempty"`
}

// SubmitResult 提交结果
type SubmitResult struct {
	VariantID  int64  `json:"variant_id"`
	Quantity   int    `json:"quantity"`
	BonusFired bool   `json:"bonus_fired"`
	BonusAdded bool   `json:"bonus_added"`
	Redirect   string `json:"redirect"`
}

// GuideConfigView 页面初始化配置
type GuideConfigView struct {
	BonusConfigured bool   `json:"bonus_configured"`
	CartURL         string `json:"cart_url"`
}

// GuideService 礼品指南会话服务
// 负责会话状态机的驱动：商品加载、规格选择、提交与自动加购的顺序编排。
type GuideService struct {
	catalog   CatalogClient
	cart      CartClient
	rule      *guide.BonusRule
	sessions  *guide.Manager
	submitLog *SubmissionService
	cartURL   string
}

// NewGuideService 创建礼品指南服务
func NewGuideService(
	catalog CatalogClient,
	cart CartClient,
	rule *guide.BonusRule,
	sessions *guide.Manager,
	submitLog *SubmissionService,
	cartURL string,
) *GuideService {
	if strings.TrimSpace(cartURL) == "" {
		cartURL = constants.CartRoute
	}
	return &GuideService{
		catalog:   catalog,
		cart:      cart,
		rule:      rule,
		sessions:  sessions,
		submitLog: submitLog,
		cartURL:   cartURL,
	}
}

// Config 页面初始化配置
func (s *GuideService) Config() GuideConfigView {
	return GuideConfigView{
		BonusConfigured: s.rule != nil,
		CartURL:         s.cartURL,
	}
}

// OpenSession 打开商品卡片：创建会话并加载商品
// 卡片缺失 handle 时是 no-op（仅记日志，不开弹窗）。
func (s *GuideService) OpenSession(ctx context.Context, handle string) (*SessionView, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		logger.Warnw("guide_open_without_handle")
		return nil, ErrHandleRequired
	}

	session, err := s.sessions.Create()
	if err != nil {
		return nil, err
	}

	session.Lock()
	generation := session.BeginLoading(handle)
	session.Unlock()

	product, fetchErr := s.catalog.FetchProduct(ctx, handle)

	session.Lock()
	defer session.Unlock()
	if fetchErr != nil {
		_ = session.FailLoad(generation)
		s.sessions.Remove(session.ID)
		logger.Warnw("guide_product_load_failed", "handle", handle, "error", fetchErr)
		return nil, fmt.Errorf("%w: %v", ErrProductLoadFailed, fetchErr)
	}
	if err := session.CompleteLoad(generation, product); err != nil {
		// 会话在拉取期间被关闭或被新的加载取代，结果丢弃
		logger.Debugw("guide_load_result_discarded", "session_id", session.ID, "handle", handle)
		return nil, ErrSessionNotFound
	}
	return buildSessionView(session), nil
}

// GetSession 获取会话快照
func (s *GuideService) GetSession(id string) (*SessionView, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	session.Lock()
	defer session.Unlock()
	return buildSessionView(session), nil
}

// SelectOption 选择规格值并重新解析变体
func (s *GuideService) SelectOption(id, option, value string) (*SessionView, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	session.Lock()
	defer session.Unlock()
	if err := session.SelectValue(option, value); err != nil {
		switch {
		case errors.Is(err, guide.ErrSessionNotReady):
			return nil, ErrSessionNotReady
		default:
			return nil, fmt.Errorf("%w: %v", ErrOptionInvalid, err)
		}
	}
	return buildSessionView(session), nil
}

// SetQuantity 设置数量（最小为 1）
func (s *GuideService) SetQuantity(id string, quantity int) (*SessionView, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	session.Lock()
	defer session.Unlock()
	if err := session.SetQuantity(quantity); err != nil {
		return nil, ErrSessionNotReady
	}
	return buildSessionView(session), nil
}

// Submit 提交加购
// 顺序保证：先加购主商品；成功后才评估触发规则并尽力而为地自动加购，
// 自动加购环节的任何失败只记日志，不影响提交成功与跳转。
func (s *GuideService) Submit(ctx context.Context, id string, quantity int) (*SubmitResult, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	session.Lock()
	variant, err := session.BeginSubmit(quantity)
	if err != nil {
		session.Unlock()
		switch {
		case errors.Is(err, guide.ErrNoPurchasableVariant):
			return nil, ErrNoPurchasableVariant
		default:
			return nil, ErrSessionNotReady
		}
	}
	generation := session.Generation
	product := session.Product
	qty := session.Quantity
	selection := make(map[string]string, len(session.Selection))
	for k, v := range session.Selection {
		selection[k] = v
	}
	session.Unlock()

	// (a) 主商品加购，失败则整体失败，会话保留选择供重试
	if _, err := s.cart.AddToCart(ctx, storefront.AddToCartInput{
		VariantID: variant.ID,
		Quantity:  qty,
	}); err != nil {
		session.Lock()
		_ = session.FailSubmit(generation)
		session.Unlock()
		logger.Warnw("guide_cart_add_failed",
			"session_id", id,
			"variant_id", variant.ID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrCartAddFailed, err)
	}

	// (b)(c) 触发规则评估与自动加购（对提交时的快照求值）
	decision := s.rule.Evaluate(product, variant, selection)
	bonusAdded := false
	if decision.Fire {
		bonusAdded = s.addBonus(ctx, id, decision.BonusHandle)
	}

	s.recordSubmission(id, product, variant, qty, decision, bonusAdded)

	session.Lock()
	if err := session.CompleteSubmit(generation); err != nil {
		logger.Debugw("guide_submit_completion_stale", "session_id", id)
	}
	session.Unlock()
	s.sessions.Remove(id)

	return &SubmitResult{
		VariantID:  variant.ID,
		Quantity:   qty,
		BonusFired: decision.Fire,
		BonusAdded: bonusAdded,
		Redirect:   s.cartURL,
	}, nil
}

// DismissSession 用户主动关闭弹窗
func (s *GuideService) DismissSession(id string) error {
	session, err := s.sessions.Get(id)
	if err != nil {
		return ErrSessionNotFound
	}
	session.Lock()
	session.Dismiss()
	session.Unlock()
	s.sessions.Remove(id)
	return nil
}

// addBonus 自动加购：拉取商品，取第一个可售变体（都不可售时取第一个），数量固定 1
func (s *GuideService) addBonus(ctx context.Context, sessionID, bonusHandle string) bool {
	bonusProduct, err := s.catalog.FetchProduct(ctx, bonusHandle)
	if err != nil {
		logger.Warnw("guide_bonus_fetch_failed",
			"session_id", sessionID,
			"bonus_handle", bonusHandle,
			"error", err,
		)
		return false
	}
	bonusVariant := bonusProduct.FirstAvailableVariant()
	if bonusVariant == nil {
		if len(bonusProduct.Variants) == 0 {
			logger.Warnw("guide_bonus_no_variant", "bonus_handle", bonusHandle)
			return false
		}
		bonusVariant = &bonusProduct.Variants[0]
	}
	if _, err := s.cart.AddToCart(ctx, storefront.AddToCartInput{
		VariantID: bonusVariant.ID,
		Quantity:  1,
		Properties: map[string]string{
			constants.AutoAddedPropertyKey: constants.AutoAddedPropertyValue,
		},
	}); err != nil {
		logger.Warnw("guide_bonus_add_failed",
			"session_id", sessionID,
			"bonus_handle", bonusHandle,
			"variant_id", bonusVariant.ID,
			"error", err,
		)
		return false
	}
	logger.Infow("guide_bonus_added",
		"session_id", sessionID,
		"bonus_handle", bonusHandle,
		"variant_id", bonusVariant.ID,
	)
	return true
}

func (s *GuideService) recordSubmission(
	sessionID string,
	product *storefront.Product,
	variant *storefront.Variant,
	quantity int,
	decision guide.BonusDecision,
	bonusAdded bool,
) {
	if s.submitLog == nil {
		return
	}
	s.submitLog.Record(queue.GuideSubmissionPayload{
		SessionID:      sessionID,
		ProductHandle:  product.Handle,
		VariantID:      variant.ID,
		Quantity:       quantity,
		UnitPriceCents: variant.Price,
		Currency:       product.PriceCurrency,
		BonusFired:     decision.Fire,
		BonusHandle:    decision.BonusHandle,
		BonusAdded:     bonusAdded,
	})
}

// buildSessionView 构建会话快照，调用方需持有会话锁
func buildSessionView(session *guide.Session) *SessionView {
	view := &SessionView{
		ID:        session.ID,
		State:     session.State,
		ErrorCode: session.ErrorCode,
		Quantity:  session.Quantity,
		Selection: make(map[string]string, len(session.Selection)),
	}
	for k, v := range session.Selection {
		view.Selection[k] = v
	}
	product := session.Product
	if product == nil {
		return view
	}
	view.Product = &ProductView{
		Handle:      product.Handle,
		Title:       product.Title,
		Description: product.Description,
		Price:       models.NewMoneyFromMinorUnits(product.Price),
		Currency:    product.PriceCurrency,
		Media:       product.Media,
		Options:     product.Options,
	}
	view.DisplayPrice = view.Product.Price
	view.Currency = product.PriceCurrency
	if variant := session.Resolve(); variant != nil {
		view.Variant = &VariantView{
			ID:        variant.ID,
			Price:     models.NewMoneyFromMinorUnits(variant.Price),
			Available: variant.Available,
		}
		view.Purchasable = variant.Available
		view.DisplayPrice = view.Variant.Price
	}
	return view
}
