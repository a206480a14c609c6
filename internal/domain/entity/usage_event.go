// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RequestType 用量事件的请求类型
type RequestType string

const (
	RequestTypeChat       RequestType = "chat"
	RequestTypeCompletion RequestType = "completion"
)

// UsageEvent 一次模型调用消耗的 Token 流水。只追加，写入后不可变。
type UsageEvent struct {
	ID          string      `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string      `json:"user_id" gorm:"type:text;index;not null"`
	Model       string      `json:"model" gorm:"type:varchar(64);not null"`
	TokensUsed  int         `json:"tokens_used" gorm:"not null;default:0"`
	RequestType RequestType `json:"request_type" gorm:"type:varchar(32);not null"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime;index"`
}

func (UsageEvent) TableName() string {
	return "usage_events"
}

func NewUsageEvent(userID, model string, tokensUsed int, requestType RequestType) *UsageEvent {
	return &UsageEvent{
		ID:          uuid.New().String(),
		UserID:      userID,
		Model:       model,
		TokensUsed:  tokensUsed,
		RequestType: requestType,
		CreatedAt:   time.Now(),
	}
}
