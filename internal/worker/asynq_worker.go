package worker

import (
	"context"
	"encoding/json"

	"github.com/giftguide-next/internal/logger"
	"github.com/giftguide-next/internal/provider"
	"github.com/giftguide-next/internal/queue"
	"github.com/giftguide-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskGuideSubmissionRecord, c.handleGuideSubmission)
}

func (c *Consumer) handleGuideSubmission(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_guide_submission_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GuideSubmissionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_guide_submission_unmarshal_failed", "error", err)
		return err
	}
	if payload.VariantID == 0 {
		logger.Debugw("worker_guide_submission_skip_invalid_payload", "session_id", payload.SessionID)
		return nil
	}
	if c.SubmissionRepo == nil {
		logger.Warnw("worker_guide_submission_skip_repo_nil", "session_id", payload.SessionID)
		return nil
	}
	if err := c.SubmissionRepo.Create(service.SubmissionFromPayload(payload)); err != nil {
		logger.Warnw("worker_guide_submission_persist_failed",
			"session_id", payload.SessionID,
			"variant_id", payload.VariantID,
			"error", err,
		)
		return err
	}
	logger.Debugw("worker_guide_submission_persisted",
		"session_id", payload.SessionID,
		"variant_id", payload.VariantID,
	)
	return nil
}
