// Package service 定义跨层稳定契约（port）
package service

import "context"

// ChatMessage 发往补全接口的单条消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest 一次补全调用的参数。
// 与上游 Completion API 的 JSON 契约保持一致，不做二次抽象。
type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

// CompletionUsage 上游返回的 token 用量
type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionChoice 上游返回的候选回复
type CompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// CompletionResponse 上游补全接口的响应
type CompletionResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   CompletionUsage    `json:"usage"`
}

// FirstContent 返回第一个候选回复的内容，无候选时返回空串
func (r *CompletionResponse) FirstContent() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// CompletionClient 上游补全接口的调用方。
// 非 2xx 响应和传输错误统一以 error 形式返回，不区分细节。
type CompletionClient interface {
	ChatCompletion(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
