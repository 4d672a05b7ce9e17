package guide

import (
	"strconv"
	"strings"

	"github.com/giftguide-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// OpenSessionRequest 打开商品卡片请求
type OpenSessionRequest struct {
	Handle string `json:"handle"`
}

// SelectOptionRequest 选择规格值请求
type SelectOptionRequest struct {
	Option string `json:"option" binding:"required"`
	Value  string `json:"value" binding:"required"`
}

// QuantityRequest 设置数量请求
// Quantity 用字符串承接，空串或非法输入一律按 1 处理。
type QuantityRequest struct {
	Quantity string `json:"quantity"`
}

// GetConfig 页面初始化配置
func (h *Handler) GetConfig(c *gin.Context) {
	response.Success(c, h.GuideService.Config())
}

// OpenSession 打开商品卡片：创建会话并加载商品
func (h *Handler) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	view, err := h.GuideService.OpenSession(c.Request.Context(), req.Handle)
	if err != nil {
		respondWithMappedError(c, err)
		return
	}
	response.Success(c, view)
}

// GetSession 获取会话快照
func (h *Handler) GetSession(c *gin.Context) {
	view, err := h.GuideService.GetSession(c.Param("id"))
	if err != nil {
		respondWithMappedError(c, err)
		return
	}
	response.Success(c, view)
}

// SelectOption 选择规格值
func (h *Handler) SelectOption(c *gin.Context) {
	var req SelectOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	view, err := h.GuideService.SelectOption(c.Param("id"), req.Option, req.Value)
	if err != nil {
		respondWithMappedError(c, err)
		return
	}
	response.Success(c, view)
}

// SetQuantity 设置数量
func (h *Handler) SetQuantity(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	view, err := h.GuideService.SetQuantity(c.Param("id"), parseQuantity(req.Quantity))
	if err != nil {
		respondWithMappedError(c, err)
		return
	}
	response.Success(c, view)
}

// Submit 提交加购
func (h *Handler) Submit(c *gin.Context) {
	var req QuantityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body")
			return
		}
	}
	// 未携带数量时传 0，保留会话中已设置的数量
	quantity := 0
	if strings.TrimSpace(req.Quantity) != "" {
		quantity = parseQuantity(req.Quantity)
	}
	result, err := h.GuideService.Submit(c.Request.Context(), c.Param("id"), quantity)
	if err != nil {
		respondWithMappedError(c, err)
		return
	}
	response.Success(c, result)
}

// DismissSession 关闭弹窗
func (h *Handler) DismissSession(c *gin.Context) {
	if err := h.GuideService.DismissSession(c.Param("id")); err != nil {
		respondWithMappedError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListSubmissions 获取最近的提交记录
func (h *Handler) ListSubmissions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	submissions, err := h.SubmissionService.ListRecent(limit)
	if err != nil {
		response.Internal(c, "could not list submissions")
		return
	}
	response.Success(c, submissions)
}

// parseQuantity 解析数量输入，空串/非数字/小于 1 一律取 1
func parseQuantity(raw string) int {
	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || quantity < 1 {
		return 1
	}
	return quantity
}
