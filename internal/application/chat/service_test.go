package chat

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkchat-api/internal/application/quota"
	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
	apperrors "sparkchat-api/pkg/errors"
	"sparkchat-api/pkg/metrics"
)

const testModel = "deepseek/deepseek-r1-0528"

type serviceFixture struct {
	service          *Service
	conversationRepo *fakeConversationRepo
	messageRepo      *fakeMessageRepo
	completion       *fakeCompletionClient
	usageRepo        *fakeUsageRepo
}

func newServiceFixture(conversations ...*entity.Conversation) *serviceFixture {
	conversationRepo := newFakeConversationRepo(conversations...)
	messageRepo := &fakeMessageRepo{}
	completion := &fakeCompletionClient{resp: completionResponse("assistant reply", 100)}
	usageRepo := &fakeUsageRepo{}
	ledger := quota.NewUsageLedger(usageRepo, nil)

	svc := NewService(
		conversationRepo,
		messageRepo,
		&fakeTx{},
		completion,
		NewContextBuilder(messageRepo),
		NewTitler(completion, testModel, 0, 0),
		quota.NewQuotaChecker(ledger),
		ledger,
		testModel,
		0.7,
	)

	return &serviceFixture{
		service:          svc,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		completion:       completion,
		usageRepo:        usageRepo,
	}
}

func ownedConv() *entity.Conversation {
	return entity.NewConversation("user-1", "", testModel)
}

func TestSendMessageEmptyMessage(t *testing.T) {
	f := newServiceFixture(ownedConv())

	_, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: "conv-1", Message: "   ",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)
}

func TestSendMessageUnknownConversation(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: "missing", Message: "hello",
	})
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
}

func TestSendMessageForeignConversation(t *testing.T) {
	conv := entity.NewConversation("someone-else", "", testModel)
	f := newServiceFixture(conv)

	_, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: conv.ID, Message: "hello",
	})

	// 他人会话与不存在的会话返回同一个错误
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
}

func TestSendMessageQuotaExceeded(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)
	f.usageRepo.usage = 10_000

	_, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: conv.ID, Message: "hello",
	})
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
	assert.Empty(t, f.messageRepo.created)
	assert.Empty(t, f.completion.requests, "no upstream call when quota is exhausted")
}

func TestSendMessageLLMFailure(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)
	f.completion.err = assert.AnError

	_, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: conv.ID, Message: "hello",
	})
	assert.ErrorIs(t, err, apperrors.ErrLLMCallFailed)

	// 补全失败不产生任何持久化副作用
	assert.Empty(t, f.messageRepo.created)
	assert.Empty(t, f.usageRepo.events)
	assert.Empty(t, f.conversationRepo.updatedTitles)
}

func TestSendMessageFirstExchange(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)

	out, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: conv.ID, Message: "  hello  ",
	})
	require.NoError(t, err)

	require.Len(t, f.messageRepo.created, 2)
	userMsg, assistantMsg := f.messageRepo.created[0], f.messageRepo.created[1]
	assert.Equal(t, entity.RoleUser, userMsg.Role)
	assert.Equal(t, "hello", userMsg.Content, "message is trimmed before persisting")
	assert.Zero(t, userMsg.TokensUsed, "user messages carry no token cost")
	assert.Equal(t, entity.RoleAssistant, assistantMsg.Role)
	assert.Equal(t, 100, assistantMsg.TokensUsed)

	require.Len(t, f.usageRepo.events, 1)
	assert.Equal(t, 100, f.usageRepo.events[0].TokensUsed)
	assert.Equal(t, entity.RequestTypeChat, f.usageRepo.events[0].RequestType)

	// 首轮对话生成标题（fake 对标题请求也返回 "assistant reply"）
	assert.Equal(t, "assistant reply", out.Title)
	assert.Equal(t, "assistant reply", f.conversationRepo.updatedTitles[conv.ID])
	assert.Empty(t, f.conversationRepo.touched)

	// 标题只基于首条用户消息，不含模型回复
	require.Len(t, f.completion.requests, 2)
	titleReq := f.completion.requests[1]
	titleSource := titleReq.Messages[len(titleReq.Messages)-1].Content
	assert.Contains(t, titleSource, "hello")
	assert.NotContains(t, titleSource, "assistant reply")

	assert.Equal(t, 100, out.TokensUsed)
	assert.Equal(t, testModel, out.Model)
	require.NotNil(t, out.Quota)
	assert.True(t, out.Quota.Allowed)
}

func TestSendMessageStoredSystemPromptStillFirstExchange(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)
	f.messageRepo.history = []*entity.Message{
		entity.NewMessage(conv.ID, entity.RoleSystem, "You are a Go expert.", 0),
	}
	f.messageRepo.priorCount = 1

	out, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: conv.ID, Message: "hello",
	})
	require.NoError(t, err)

	// 建会话时落库的 system 提示词不影响首轮判定，标题照常生成
	assert.Equal(t, "assistant reply", out.Title)
	assert.Equal(t, "assistant reply", f.conversationRepo.updatedTitles[conv.ID])

	// 补全上下文使用落库的提示词，不再叠加默认提示词
	require.NotEmpty(t, f.completion.requests)
	chatReq := f.completion.requests[0]
	require.Len(t, chatReq.Messages, 2)
	assert.Equal(t, string(entity.RoleSystem), chatReq.Messages[0].Role)
	assert.Equal(t, "You are a Go expert.", chatReq.Messages[0].Content)
}

func TestSendMessageTokenMetricsUnchanged(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)

	promptBefore := testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues(testModel, "prompt"))
	completionBefore := testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues(testModel, "completion"))

	_, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: conv.ID, Message: "hello",
	})
	require.NoError(t, err)

	// token 用量只在补全客户端计数，应用层不再累加
	assert.Equal(t, promptBefore, testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues(testModel, "prompt")))
	assert.Equal(t, completionBefore, testutil.ToFloat64(metrics.LLMTokensUsed.WithLabelValues(testModel, "completion")))
}

func TestSendMessageFollowUpTouchesConversation(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)
	f.messageRepo.history = []*entity.Message{
		entity.NewMessage(conv.ID, entity.RoleUser, "hello", 0),
		entity.NewMessage(conv.ID, entity.RoleAssistant, "hi", 10),
	}
	f.messageRepo.priorCount = 2

	out, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: conv.ID, Message: "next",
	})
	require.NoError(t, err)

	assert.Empty(t, f.conversationRepo.updatedTitles, "title is only generated on the first exchange")
	assert.Equal(t, []string{conv.ID}, f.conversationRepo.touched)
	assert.Equal(t, conv.Title, out.Title)
}

func TestSendMessageTitleUpdateFailureKeepsOldTitle(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)
	f.conversationRepo.titleErr = assert.AnError

	out, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanFree, ConversationID: conv.ID, Message: "hello",
	})
	require.NoError(t, err, "title persistence failure does not fail the exchange")
	assert.Equal(t, entity.DefaultTitle, out.Title)
}

func TestSendMessageMaxTokensFollowsPlan(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)

	_, err := f.service.SendMessage(context.Background(), SendMessageInput{
		UserID: "user-1", Plan: entity.PlanPremium, ConversationID: conv.ID, Message: "hello",
	})
	require.NoError(t, err)

	require.NotEmpty(t, f.completion.requests)
	assert.Equal(t, 8_000, f.completion.requests[0].MaxTokens)
	assert.Equal(t, testModel, f.completion.requests[0].Model)
}

func TestCreateConversation(t *testing.T) {
	f := newServiceFixture()

	conv, err := f.service.CreateConversation(context.Background(), "user-1", entity.PlanFree, "", "")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultTitle, conv.Title)
	assert.Equal(t, testModel, conv.Model)
	assert.Contains(t, f.conversationRepo.conversations, conv.ID)
	assert.Empty(t, f.messageRepo.created, "no system message without a prompt")
}

func TestCreateConversationWithSystemPrompt(t *testing.T) {
	f := newServiceFixture()

	conv, err := f.service.CreateConversation(context.Background(), "user-1", entity.PlanFree, "Go helper", "  You are a Go expert.  ")
	require.NoError(t, err)

	require.Len(t, f.messageRepo.created, 1)
	msg := f.messageRepo.created[0]
	assert.Equal(t, conv.ID, msg.ConversationID)
	assert.Equal(t, entity.RoleSystem, msg.Role)
	assert.Equal(t, "You are a Go expert.", msg.Content)
	assert.Zero(t, msg.TokensUsed)
}

func TestCreateConversationDailyLimit(t *testing.T) {
	f := newServiceFixture()
	f.conversationRepo.createdToday = 10

	_, err := f.service.CreateConversation(context.Background(), "user-1", entity.PlanFree, "", "")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeQuotaExceeded, appErr.Code)
}

func TestCreateConversationUnknownPlan(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.CreateConversation(context.Background(), "user-1", entity.PlanTier("trial"), "", "")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeUnknownPlan, appErr.Code)
}

func TestGetConversation(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)
	f.messageRepo.history = []*entity.Message{
		entity.NewMessage(conv.ID, entity.RoleUser, "hello", 0),
	}

	got, messages, err := f.service.GetConversation(context.Background(), "user-1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
	assert.Len(t, messages, 1)

	_, _, err = f.service.GetConversation(context.Background(), "user-2", conv.ID)
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
}

func TestListConversations(t *testing.T) {
	f := newServiceFixture(ownedConv(), ownedConv())

	result, err := f.service.ListConversations(context.Background(), "user-1", repository.NewPagination(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Items, 2)
}

func TestDeleteConversation(t *testing.T) {
	conv := ownedConv()
	f := newServiceFixture(conv)

	err := f.service.DeleteConversation(context.Background(), "user-1", conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{conv.ID}, f.messageRepo.deletedFor, "messages go first")
	assert.NotContains(t, f.conversationRepo.conversations, conv.ID)

	err = f.service.DeleteConversation(context.Background(), "user-1", conv.ID)
	assert.ErrorIs(t, err, apperrors.ErrConversationNotFound)
}
