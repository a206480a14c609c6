// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitle 新会话的占位标题，首轮对话后由模型生成正式标题
const DefaultTitle = "New Conversation"

type Conversation struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:text;index;not null"`
	Title     string    `json:"title" gorm:"type:text;not null"`
	Model     string    `json:"model" gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func NewConversation(userID, title, model string) *Conversation {
	now := time.Now()
	if title == "" {
		title = DefaultTitle
	}
	return &Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message 会话消息。创建后不可变，按 created_at 排序。
// 只有 assistant 消息携带非零 tokens_used。
type Message struct {
	ID             string    `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"type:uuid;index;not null"`
	Role           Role      `json:"role" gorm:"type:varchar(16);not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	TokensUsed     int       `json:"tokens_used" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}

func NewMessage(conversationID string, role Role, content string, tokensUsed int) *Message {
	return &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		TokensUsed:     tokensUsed,
		CreatedAt:      time.Now(),
	}
}
