package guide

import (
	"errors"

	"github.com/giftguide-next/internal/guide"
	"github.com/giftguide-next/internal/http/response"
	"github.com/giftguide-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

var sessionErrorRules = []mappedHandlerError{
	{target: service.ErrHandleRequired, code: response.CodeBadRequest, msg: "product handle is required"},
	{target: service.ErrSessionNotFound, code: response.CodeNotFound, msg: "session not found"},
	{target: service.ErrSessionNotReady, code: response.CodeBadRequest, msg: "session is not ready"},
	{target: service.ErrOptionInvalid, code: response.CodeBadRequest, msg: "option selection is invalid"},
	{target: service.ErrProductLoadFailed, code: response.CodeBadRequest, msg: "could not load product, please try again"},
	{target: service.ErrNoPurchasableVariant, code: response.CodeBadRequest, msg: "no purchasable variant for the current selection"},
	{target: service.ErrCartAddFailed, code: response.CodeBadRequest, msg: "could not add this to your cart, please try again"},
	{target: guide.ErrTooManySessions, code: response.CodeTooManyRequests, msg: "too many open sessions, please try again later"},
}

func respondWithMappedError(c *gin.Context, err error) {
	for _, rule := range sessionErrorRules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, rule.msg)
			return
		}
	}
	response.Internal(c, "internal error")
}
