package dto

import (
	"time"

	"sparkchat-api/internal/application/chat"
	"sparkchat-api/internal/application/quota"
	"sparkchat-api/internal/domain/entity"
)

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Message   string `json:"message" binding:"required"`
	PromptKey string `json:"prompt_key"`
}

// MessageResponse 单条消息
type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	TokensUsed     int       `json:"tokens_used"`
	CreatedAt      time.Time `json:"created_at"`
}

// SendMessageResponse 发送消息响应
type SendMessageResponse struct {
	UserMessage      *MessageResponse   `json:"user_message"`
	AssistantMessage *MessageResponse   `json:"assistant_message"`
	TokensUsed       int                `json:"tokens_used"`
	Model            string             `json:"model"`
	Title            string             `json:"title"`
	Quota            *quota.QuotaStatus `json:"quota"`
}

// FromMessage 转换消息实体
func FromMessage(m *entity.Message) *MessageResponse {
	if m == nil {
		return nil
	}
	return &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		TokensUsed:     m.TokensUsed,
		CreatedAt:      m.CreatedAt,
	}
}

// FromSendMessageOutput 转换发送结果
func FromSendMessageOutput(out *chat.SendMessageOutput) *SendMessageResponse {
	return &SendMessageResponse{
		UserMessage:      FromMessage(out.UserMessage),
		AssistantMessage: FromMessage(out.AssistantMessage),
		TokensUsed:       out.TokensUsed,
		Model:            out.Model,
		Title:            out.Title,
		Quota:            out.Quota,
	}
}

// PromptsResponse 可用系统提示词场景
type PromptsResponse struct {
	Keys    []string `json:"keys"`
	Default string   `json:"default"`
}
