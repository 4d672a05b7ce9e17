package repository

import (
	"github.com/giftguide-next/internal/models"

	"gorm.io/gorm"
)

// SubmissionRepository 提交记录数据访问接口
type SubmissionRepository interface {
	Create(submission *models.Submission) error
	ListRecent(limit int) ([]models.Submission, error)
	CountByHandle(handle string) (int64, error)
}

// GormSubmissionRepository GORM 实现
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository 创建提交记录仓库
func NewSubmissionRepository(db *gorm.DB) *GormSubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// Create 写入提交记录
func (r *GormSubmissionRepository) Create(submission *models.Submission) error {
	return r.db.Create(submission).Error
}

// ListRecent 按时间倒序获取最近的提交记录
func (r *GormSubmissionRepository) ListRecent(limit int) ([]models.Submission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var submissions []models.Submission
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&submissions).Error
	return submissions, err
}

// CountByHandle 统计某商品的提交次数
func (r *GormSubmissionRepository) CountByHandle(handle string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).Where("product_handle = ?", handle).Count(&count).Error
	return count, err
}
