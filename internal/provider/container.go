package provider

import (
	"time"

	"github.com/giftguide-next/internal/cache"
	"github.com/giftguide-next/internal/config"
	"github.com/giftguide-next/internal/guide"
	"github.com/giftguide-next/internal/logger"
	"github.com/giftguide-next/internal/models"
	"github.com/giftguide-next/internal/queue"
	"github.com/giftguide-next/internal/repository"
	"github.com/giftguide-next/internal/service"
	"github.com/giftguide-next/internal/storefront"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Clients
	Storefront *storefront.Client

	// Repositories
	SubmissionRepo repository.SubmissionRepository

	// Services
	GuideService      *service.GuideService
	SubmissionService *service.SubmissionService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化店铺平台客户端
	storefrontClient, err := storefront.NewClient(storefront.Config{
		BaseURL: cfg.Storefront.BaseURL,
		Timeout: time.Duration(cfg.Storefront.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		logger.Errorw("provider_init_storefront_failed", "error", err)
	}
	c.Storefront = storefrontClient

	// 2. 初始化 Repositories
	c.SubmissionRepo = repository.NewSubmissionRepository(models.DB)

	// 3. 初始化 Services
	c.SubmissionService = service.NewSubmissionService(c.SubmissionRepo, c.QueueClient)

	rule := guide.NewBonusRule(
		bonusTrigger(cfg, cfg.Guide.Bonus.TriggerA),
		bonusTrigger(cfg, cfg.Guide.Bonus.TriggerB),
		bonusTrigger(cfg, cfg.Guide.Bonus.BonusHandle),
	)
	sessions := guide.NewManager(
		time.Duration(cfg.Guide.SessionTTLMinutes)*time.Minute,
		cfg.Guide.MaxSessions,
	)
	c.GuideService = service.NewGuideService(
		c.Storefront,
		c.Storefront,
		rule,
		sessions,
		c.SubmissionService,
		cfg.Storefront.CartURL,
	)

	return c
}

// bonusTrigger 未启用加购规则时一律按未配置处理
func bonusTrigger(cfg *config.Config, value string) string {
	if cfg == nil || !cfg.Guide.Bonus.Enabled {
		return ""
	}
	return value
}
