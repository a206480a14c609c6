package chat

import (
	"context"
	"fmt"
	"strings"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/service"
	"sparkchat-api/pkg/logger"
	"sparkchat-api/pkg/metrics"
)

const (
	titleSystemPrompt = "Generate a short, descriptive title (max 50 characters) for this conversation. Return only the title, no quotes or extra text."

	// titleSourceLimit 送入标题生成的消息文本截断长度（按 rune 计）
	titleSourceLimit = 500

	defaultTitleMaxTokens   = 50
	defaultTitleTemperature = 0.3
)

// Titler 根据首轮对话内容生成会话标题。
// 生成失败不向上传播，回退到占位标题。
type Titler struct {
	client      service.CompletionClient
	model       string
	maxTokens   int
	temperature float64
}

func NewTitler(client service.CompletionClient, model string, maxTokens int, temperature float64) *Titler {
	if maxTokens <= 0 {
		maxTokens = defaultTitleMaxTokens
	}
	if temperature <= 0 {
		temperature = defaultTitleTemperature
	}
	return &Titler{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// GenerateTitle 生成会话标题。firstMessage 为会话首条用户消息。
// 任何失败路径都返回占位标题，调用方无需判错。
func (t *Titler) GenerateTitle(ctx context.Context, firstMessage string) string {
	source := firstMessage
	if runes := []rune(source); len(runes) > titleSourceLimit {
		source = string(runes[:titleSourceLimit])
	}

	req := service.CompletionRequest{
		Model: t.model,
		Messages: []service.ChatMessage{
			{Role: string(entity.RoleSystem), Content: titleSystemPrompt},
			{Role: string(entity.RoleUser), Content: fmt.Sprintf("Generate a title for this conversation:\n\n%s...", source)},
		},
		Temperature: t.temperature,
		MaxTokens:   t.maxTokens,
	}

	resp, err := t.client.ChatCompletion(ctx, req)
	if err != nil {
		logger.FromContext(ctx).Warn("title generation failed, using fallback", "error", err)
		metrics.TitleGenerationTotal.WithLabelValues("fallback").Inc()
		return entity.DefaultTitle
	}

	title := strings.TrimSpace(resp.FirstContent())
	if title == "" {
		metrics.TitleGenerationTotal.WithLabelValues("fallback").Inc()
		return entity.DefaultTitle
	}

	metrics.TitleGenerationTotal.WithLabelValues("ok").Inc()
	return title
}
