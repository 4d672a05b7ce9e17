package storefront

// Media 商品媒体资源
type Media struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Option 商品规格轴（如颜色/尺码），值为有序的可选项列表
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Variant 变体：一组完整规格值对应的可购买单元
// Options 与商品 Options 按位置对齐。
type Variant struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Options   []string `json:"options"`
	Price     int64    `json:"price"` // 最小货币单位
	Available bool     `json:"available"`
}

// Product 商品完整描述（按 handle 拉取）
type Product struct {
	Handle        string    `json:"handle"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"` // 基础展示价，最小货币单位
	PriceCurrency string    `json:"price_currency"`
	Media         []Media   `json:"media"`
	Options       []Option  `json:"options"`
	Variants      []Variant `json:"variants"`
}

// FirstAvailableVariant 返回第一个可售变体；全部不可售时返回 nil
func (p *Product) FirstAvailableVariant() *Variant {
	if p == nil {
		return nil
	}
	for i := range p.Variants {
		if p.Variants[i].Available {
			return &p.Variants[i]
		}
	}
	return nil
}

// LineItem 购物车行项目（加购响应）
type LineItem struct {
	ID         int64             `json:"id"`
	Quantity   int               `json:"quantity"`
	Properties map[string]string `json:"properties,omitempty"`
}

// AddToCartInput 加购请求输入
type AddToCartInput struct {
	VariantID  int64
	Quantity   int
	Properties map[string]string
}
