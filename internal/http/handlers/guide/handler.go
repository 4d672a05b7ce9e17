package guide

import "github.com/giftguide-next/internal/provider"

// Handler 礼品指南接口处理器入口
// 说明：该处理器面向店铺前台页面，全部接口匿名访问。
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
