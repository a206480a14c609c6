// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"sparkchat-api/internal/domain/entity"
)

type UsageEventRepository interface {
	Create(ctx context.Context, event *entity.UsageEvent) error
	// GetTokenUsage 汇总 [startInclusive, endExclusive) 区间内的 token 消耗
	GetTokenUsage(ctx context.Context, userID string, startInclusive, endExclusive time.Time) (int64, error)
	// ListRecent 按 created_at 倒序返回最近的用量事件
	ListRecent(ctx context.Context, userID string, limit int) ([]*entity.UsageEvent, error)
}
