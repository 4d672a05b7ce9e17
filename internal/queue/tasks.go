package queue

import (
	"encoding/json"

	"github.com/giftguide-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskGuideSubmissionRecord 提交记录落库任务
	TaskGuideSubmissionRecord = constants.TaskGuideSubmissionRecord
)

// GuideSubmissionPayload 提交记录任务载荷
type GuideSubmissionPayload struct {
	SessionID      string `json:"session_id"`
	ProductHandle  string `json:"product_handle"`
	VariantID      int64  `json:"variant_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Currency       string `json:"currency"`
	BonusFired     bool   `json:"bonus_fired"`
	BonusHandle    string `json:"bonus_handle"`
	BonusAdded     bool   `json:"bonus_added"`
}

// NewGuideSubmissionTask 创建提交记录任务
func NewGuideSubmissionTask(payload GuideSubmissionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGuideSubmissionRecord, body), nil
}
