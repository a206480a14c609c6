package dto

import (
	"time"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
)

// CreateConversationRequest 创建会话请求
type CreateConversationRequest struct {
	Title        string `json:"title"`
	SystemPrompt string `json:"system_prompt"`
}

// ConversationResponse 会话信息
type ConversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationDetailResponse 会话详情（含全部消息）
type ConversationDetailResponse struct {
	Conversation *ConversationResponse `json:"conversation"`
	Messages     []*MessageResponse    `json:"messages"`
}

// FromConversation 转换会话实体
func FromConversation(c *entity.Conversation) *ConversationResponse {
	if c == nil {
		return nil
	}
	return &ConversationResponse{
		ID:        c.ID,
		Title:     c.Title,
		Model:     c.Model,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// FromConversations 转换会话列表
func FromConversations(items []*entity.Conversation) []*ConversationResponse {
	out := make([]*ConversationResponse, 0, len(items))
	for _, c := range items {
		out = append(out, FromConversation(c))
	}
	return out
}

// FromMessages 转换消息列表
func FromMessages(items []*entity.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, FromMessage(m))
	}
	return out
}

// PageMetaFrom 从分页结果构建元数据
func PageMetaFrom[T any](result *repository.PagedResult[T]) *PageMeta {
	return &PageMeta{
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      int(result.Total),
		TotalPages: result.TotalPages,
	}
}
