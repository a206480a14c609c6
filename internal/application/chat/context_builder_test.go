package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkchat-api/internal/domain/entity"
)

func TestContextBuilderFirstExchange(t *testing.T) {
	builder := NewContextBuilder(&fakeMessageRepo{})

	convCtx, err := builder.Build(context.Background(), "conv-1", SystemPromptFor("coding"), "How do I read a file in Go?")
	require.NoError(t, err)

	require.Len(t, convCtx.Messages, 2)
	assert.Equal(t, string(entity.RoleSystem), convCtx.Messages[0].Role)
	assert.Equal(t, SystemPromptFor("coding"), convCtx.Messages[0].Content)
	assert.Equal(t, string(entity.RoleUser), convCtx.Messages[1].Role)
	assert.Equal(t, "How do I read a file in Go?", convCtx.Messages[1].Content)
	assert.True(t, convCtx.FirstExchange())
}

func TestContextBuilderIncludesHistory(t *testing.T) {
	repo := &fakeMessageRepo{
		history: []*entity.Message{
			entity.NewMessage("conv-1", entity.RoleUser, "hello", 0),
			entity.NewMessage("conv-1", entity.RoleAssistant, "hi there", 12),
		},
		priorCount: 2,
	}
	builder := NewContextBuilder(repo)

	convCtx, err := builder.Build(context.Background(), "conv-1", "", "next question")
	require.NoError(t, err)

	require.Len(t, convCtx.Messages, 4)
	assert.Equal(t, "hello", convCtx.Messages[1].Content)
	assert.Equal(t, "hi there", convCtx.Messages[2].Content)
	assert.Equal(t, "next question", convCtx.Messages[3].Content)
	assert.False(t, convCtx.FirstExchange())

	// systemPrompt 为空时回退到 general
	assert.Equal(t, SystemPromptFor(DefaultPromptKey), convCtx.Messages[0].Content)
}

func TestContextBuilderStoredSystemPrompt(t *testing.T) {
	repo := &fakeMessageRepo{
		history: []*entity.Message{
			entity.NewMessage("conv-1", entity.RoleSystem, "You are a Go expert.", 0),
		},
		priorCount: 1,
	}
	builder := NewContextBuilder(repo)

	convCtx, err := builder.Build(context.Background(), "conv-1", SystemPromptFor("coding"), "hello")
	require.NoError(t, err)

	// 落库的提示词优先，不与请求指定的提示词叠加
	require.Len(t, convCtx.Messages, 2)
	assert.Equal(t, string(entity.RoleSystem), convCtx.Messages[0].Role)
	assert.Equal(t, "You are a Go expert.", convCtx.Messages[0].Content)
	assert.Equal(t, "hello", convCtx.Messages[1].Content)

	// system 提示词不算对话，首轮判定不受影响
	assert.True(t, convCtx.FirstExchange())
	assert.Equal(t, int64(1), convCtx.PriorCount)
}

func TestContextBuilderWindow(t *testing.T) {
	repo := &fakeMessageRepo{priorCount: 50}
	for i := 0; i < 50; i++ {
		repo.history = append(repo.history,
			entity.NewMessage("conv-1", entity.RoleUser, fmt.Sprintf("message %d", i), 0))
	}
	builder := NewContextBuilder(repo)

	convCtx, err := builder.Build(context.Background(), "conv-1", "prompt", "latest")
	require.NoError(t, err)

	// system + 最近 20 条 + 本次用户消息
	require.Len(t, convCtx.Messages, 22)
	assert.Equal(t, "message 30", convCtx.Messages[1].Content, "older messages fall out of the window")
	assert.Equal(t, "message 49", convCtx.Messages[20].Content)
}

func TestContextBuilderRepoFailure(t *testing.T) {
	repo := &fakeMessageRepo{listErr: assert.AnError}
	builder := NewContextBuilder(repo)

	_, err := builder.Build(context.Background(), "conv-1", "prompt", "hello")
	assert.Error(t, err)
}

func TestSystemPromptFor(t *testing.T) {
	assert.NotEmpty(t, SystemPromptFor("coding"))
	assert.NotEqual(t, SystemPromptFor("coding"), SystemPromptFor("creative"))

	// 未知场景回退到 general
	assert.Equal(t, SystemPromptFor(DefaultPromptKey), SystemPromptFor("no-such-key"))

	keys := SystemPromptKeys()
	assert.Contains(t, keys, DefaultPromptKey)
	assert.IsIncreasing(t, keys)
}
