package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/service"
)

func TestTitlerGeneratesTitle(t *testing.T) {
	client := &fakeCompletionClient{resp: completionResponse("  Go File Reading Basics  ", 20)}
	titler := NewTitler(client, "deepseek/deepseek-r1-0528", 0, 0)

	title := titler.GenerateTitle(context.Background(), "How do I read a file in Go?\n\nUse os.ReadFile.")
	assert.Equal(t, "Go File Reading Basics", title, "whitespace is trimmed")

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, 50, req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 0.001)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, string(entity.RoleSystem), req.Messages[0].Role)
}

func TestTitlerFallbackOnError(t *testing.T) {
	client := &fakeCompletionClient{err: assert.AnError}
	titler := NewTitler(client, "deepseek/deepseek-r1-0528", 0, 0)

	title := titler.GenerateTitle(context.Background(), "some conversation")
	assert.Equal(t, entity.DefaultTitle, title)
}

func TestTitlerFallbackOnEmptyContent(t *testing.T) {
	client := &fakeCompletionClient{resp: &service.CompletionResponse{Model: "deepseek/deepseek-r1-0528"}}
	titler := NewTitler(client, "deepseek/deepseek-r1-0528", 0, 0)

	title := titler.GenerateTitle(context.Background(), "some conversation")
	assert.Equal(t, entity.DefaultTitle, title)
}

func TestTitlerTruncatesSource(t *testing.T) {
	client := &fakeCompletionClient{resp: completionResponse("Long Chat", 10)}
	titler := NewTitler(client, "deepseek/deepseek-r1-0528", 0, 0)

	// 多字节字符按 rune 截断，不会截出半个字符
	long := strings.Repeat("对话内容", 200)
	titler.GenerateTitle(context.Background(), long)

	require.Len(t, client.requests, 1)
	prompt := client.requests[0].Messages[1].Content
	assert.True(t, strings.HasSuffix(prompt, "..."))
	assert.Contains(t, prompt, string([]rune(long)[:500]))
	assert.NotContains(t, prompt, string([]rune(long)[:501]))
}
