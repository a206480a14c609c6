// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"sparkchat-api/internal/domain/entity"
)

type MessageRepository struct {
	client *Client
}

func NewMessageRepository(client *Client) *MessageRepository {
	return &MessageRepository{client: client}
}

func (r *MessageRepository) Create(ctx context.Context, message *entity.Message) error {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(message).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.ListByConversation")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var messages []*entity.Message
	if err := db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// ListRecentByConversation 取最近 limit 条消息并按时间升序返回。
// 先倒序截断再反转，保证窗口保留的是最新的消息而不是最早的。
func (r *MessageRepository) ListRecentByConversation(ctx context.Context, conversationID string, limit int) ([]*entity.Message, error) {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.ListRecentByConversation")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var messages []*entity.Message
	if err := db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list recent messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.CountByConversation")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.CountByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("conversations.user_id = ?", userID).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count user messages: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) DeleteByConversation(ctx context.Context, conversationID string) error {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.DeleteByConversation")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Message{}, "conversation_id = ?", conversationID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}
