package router

import (
	"fmt"

	"github.com/giftguide-next/internal/cache"
	"github.com/giftguide-next/internal/config"
	guidehandlers "github.com/giftguide-next/internal/http/handlers/guide"
	"github.com/giftguide-next/internal/logger"
	"github.com/giftguide-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	guideHandler := guidehandlers.New(c)
	openRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:guide_open", cache.Prefix()),
		WindowSeconds: cfg.Guide.OpenRateLimit.WindowSeconds,
		MaxRequests:   cfg.Guide.OpenRateLimit.MaxRequests,
	}
	redisClient := cache.Client()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		guide := apiV1.Group("/guide")
		{
			guide.GET("/config", guideHandler.GetConfig)
			guide.POST("/sessions", RateLimitMiddleware(redisClient, openRule, KeyByIP), guideHandler.OpenSession)
			guide.GET("/sessions/:id", guideHandler.GetSession)
			guide.POST("/sessions/:id/select", guideHandler.SelectOption)
			guide.PUT("/sessions/:id/quantity", guideHandler.SetQuantity)
			guide.POST("/sessions/:id/submit", guideHandler.Submit)
			guide.DELETE("/sessions/:id", guideHandler.DismissSession)
			guide.GET("/submissions", guideHandler.ListSubmissions)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
