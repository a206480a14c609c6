// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"sparkchat-api/internal/domain/entity"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	// GetByID 返回会话；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	// ListByUser 按 updated_at 倒序返回用户会话
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.Conversation], error)
	// UpdateTitle 更新标题并推进 updated_at
	UpdateTitle(ctx context.Context, id, title string) error
	// Touch 仅推进 updated_at
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// CountByUser 返回用户会话总数
	CountByUser(ctx context.Context, userID string) (int64, error)
	// CountByUserSince 返回 since 之后创建的会话数
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListByConversation 按 created_at 升序返回全部消息
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	// ListRecentByConversation 返回最近 limit 条消息，按 created_at 升序排列
	ListRecentByConversation(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error)
	// CountByConversation 返回会话内消息数
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
	// CountByUser 返回用户全部会话的消息总数
	CountByUser(ctx context.Context, userID string) (int64, error)
	// DeleteByConversation 删除会话全部消息
	DeleteByConversation(ctx context.Context, conversationID string) error
}
