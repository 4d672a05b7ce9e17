package models

import (
	"time"
)

// Submission 提交记录表
// 记录每次礼品指南成功加购的主商品与自动加购结果，仅用于审计与统计。
type Submission struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                     // 主键
	SessionID     string    `gorm:"type:varchar(64);not null;index" json:"session_id"`       // 会话ID
	ProductHandle string    `gorm:"type:varchar(255);not null;index" json:"product_handle"`  // 主商品 handle
	VariantID     int64     `gorm:"not null" json:"variant_id"`                               // 已加购变体ID
	Quantity      int       `gorm:"not null;default:1" json:"quantity"`                       // 加购数量
	UnitPrice     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 变体单价
	Currency      string    `gorm:"type:varchar(8)" json:"currency"`                          // 货币
	BonusFired    bool      `gorm:"not null;default:false" json:"bonus_fired"`                // 触发规则是否命中
	BonusHandle   string    `gorm:"type:varchar(255)" json:"bonus_handle"`                    // 自动加购商品 handle
	BonusAdded    bool      `gorm:"not null;default:false" json:"bonus_added"`                // 自动加购是否实际成功
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (Submission) TableName() string {
	return "guide_submissions"
}
