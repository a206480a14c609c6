// Package messaging 基于 Redis Stream 的消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sparkchat-api/internal/domain/entity"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// UsageRecordedMessage 用量记账完成消息
type UsageRecordedMessage struct {
	EventID     string `json:"event_id"`
	UserID      string `json:"user_id"`
	Model       string `json:"model"`
	TokensUsed  int    `json:"tokens_used"`
	RequestType string `json:"request_type"`
}

// PublishUsageRecorded 发布用量记账完成消息
func (p *Producer) PublishUsageRecorded(ctx context.Context, event *entity.UsageEvent) (string, error) {
	payload := &UsageRecordedMessage{
		EventID:     event.ID,
		UserID:      event.UserID,
		Model:       event.Model,
		TokensUsed:  event.TokensUsed,
		RequestType: string(event.RequestType),
	}

	msg, err := NewMessage(event.ID, TypeUsageRecorded, event.UserID, payload)
	if err != nil {
		return "", err
	}

	return p.Publish(ctx, StreamUsageEvents, msg)
}
