package chat

import (
	"context"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
	"sparkchat-api/internal/domain/service"
)

// contextWindow 每次补全携带的历史消息上限。
// 取最近的消息而非最早的，保证长会话中模型始终看到当前话题。
const contextWindow = 20

// ConversationContext 一次补全的上下文快照
type ConversationContext struct {
	// Messages 依次为 system 提示词、最近的历史消息、本次用户消息
	Messages []service.ChatMessage
	// PriorCount 本次用户消息之前会话内已有的消息数
	PriorCount int64
	// PriorExchanges 本次用户消息之前的对话消息数，不含 system 提示词
	PriorExchanges int64
}

// FirstExchange 判断本次是否为会话首轮对话。
// 建会话时落库的 system 提示词不算对话，首轮仍会触发标题生成。
func (c *ConversationContext) FirstExchange() bool {
	return c.PriorExchanges == 0
}

// ContextBuilder 组装发往补全接口的消息序列
type ContextBuilder struct {
	messageRepo repository.MessageRepository
}

func NewContextBuilder(messageRepo repository.MessageRepository) *ContextBuilder {
	return &ContextBuilder{messageRepo: messageRepo}
}

// Build 读取会话最近的历史并拼装补全上下文。
// 会话内已落库的 system 提示词优先；没有时用 systemPrompt，
// systemPrompt 也为空时回退到 general 场景的提示词。
func (b *ContextBuilder) Build(ctx context.Context, conversationID, systemPrompt, userMessage string) (*ConversationContext, error) {
	history, err := b.messageRepo.ListRecentByConversation(ctx, conversationID, contextWindow)
	if err != nil {
		return nil, err
	}

	prior, err := b.messageRepo.CountByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	stored := false
	var exchanges int64
	for _, m := range history {
		if m.Role == entity.RoleSystem {
			stored = true
		} else {
			exchanges++
		}
	}
	// 超出窗口被截断的历史全部按对话消息计
	if overflow := prior - int64(len(history)); overflow > 0 {
		exchanges += overflow
	}

	if systemPrompt == "" {
		systemPrompt = SystemPromptFor(DefaultPromptKey)
	}

	messages := make([]service.ChatMessage, 0, len(history)+2)
	if !stored {
		messages = append(messages, service.ChatMessage{
			Role:    string(entity.RoleSystem),
			Content: systemPrompt,
		})
	}
	for _, m := range history {
		messages = append(messages, service.ChatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	messages = append(messages, service.ChatMessage{
		Role:    string(entity.RoleUser),
		Content: userMessage,
	})

	return &ConversationContext{
		Messages:       messages,
		PriorCount:     prior,
		PriorExchanges: exchanges,
	}, nil
}
