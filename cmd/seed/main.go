package main

import (
	"fmt"
	"time"

	"github.com/giftguide-next/internal/config"
	"github.com/giftguide-next/internal/logger"
	"github.com/giftguide-next/internal/models"
)

// 开发环境演示数据：写入若干提交记录，便于调试最近提交列表接口。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now()
	submissions := []models.Submission{
		{
			SessionID:     "demo-session-01",
			ProductHandle: "classic-tee",
			VariantID:     40001,
			Quantity:      1,
			UnitPrice:     models.NewMoneyFromMinorUnits(1900),
			Currency:      "USD",
			CreatedAt:     now.Add(-48 * time.Hour),
		},
		{
			SessionID:     "demo-session-02",
			ProductHandle: "graphic-shirt",
			VariantID:     40013,
			Quantity:      2,
			UnitPrice:     models.NewMoneyFromMinorUnits(4500),
			Currency:      "USD",
			BonusFired:    true,
			BonusHandle:   "bonus-pin",
			BonusAdded:    true,
			CreatedAt:     now.Add(-24 * time.Hour),
		},
		{
			SessionID:     "demo-session-03",
			ProductHandle: "graphic-shirt",
			VariantID:     40011,
			Quantity:      1,
			UnitPrice:     models.NewMoneyFromMinorUnits(2500),
			Currency:      "USD",
			BonusFired:    true,
			BonusHandle:   "bonus-pin",
			BonusAdded:    false,
			CreatedAt:     now.Add(-2 * time.Hour),
		},
	}

	for i := range submissions {
		if err := models.DB.Create(&submissions[i]).Error; err != nil {
			stdLog.Fatalf("Failed to seed submission %s: %v", submissions[i].SessionID, err)
		}
	}

	fmt.Printf("Seeded %d demo submissions\n", len(submissions))
}
