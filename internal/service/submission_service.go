package service

import (
	"github.com/giftguide-next/internal/logger"
	"github.com/giftguide-next/internal/models"
	"github.com/giftguide-next/internal/queue"
	"github.com/giftguide-next/internal/repository"
)

// SubmissionService 提交记录服务
// 队列可用时异步落库，否则同步写入；两条路径都是尽力而为，失败只记日志。
type SubmissionService struct {
	repo        repository.SubmissionRepository
	queueClient *queue.Client
}

// NewSubmissionService 创建提交记录服务
func NewSubmissionService(repo repository.SubmissionRepository, queueClient *queue.Client) *SubmissionService {
	return &SubmissionService{repo: repo, queueClient: queueClient}
}

// Record 记录一次成功提交
func (s *SubmissionService) Record(payload queue.GuideSubmissionPayload) {
	if s == nil {
		return
	}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueGuideSubmission(payload); err == nil {
			return
		} else {
			logger.Warnw("guide_submission_enqueue_failed",
				"session_id", payload.SessionID,
				"error", err,
			)
		}
	}
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(SubmissionFromPayload(payload)); err != nil {
		logger.Warnw("guide_submission_persist_failed",
			"session_id", payload.SessionID,
			"error", err,
		)
	}
}

// ListRecent 获取最近的提交记录
func (s *SubmissionService) ListRecent(limit int) ([]models.Submission, error) {
	if s == nil || s.repo == nil {
		return []models.Submission{}, nil
	}
	return s.repo.ListRecent(limit)
}

// SubmissionFromPayload 任务载荷转数据模型
func SubmissionFromPayload(payload queue.GuideSubmissionPayload) *models.Submission {
	return &models.Submission{
		SessionID:     payload.SessionID,
		ProductHandle: payload.ProductHandle,
		VariantID:     payload.VariantID,
		Quantity:      payload.Quantity,
		UnitPrice:     models.NewMoneyFromMinorUnits(payload.UnitPriceCents),
		Currency:      payload.Currency,
		BonusFired:    payload.BonusFired,
		BonusHandle:   payload.BonusHandle,
		BonusAdded:    payload.BonusAdded,
	}
}
