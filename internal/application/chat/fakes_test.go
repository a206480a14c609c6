package chat

import (
	"context"
	"time"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
	"sparkchat-api/internal/domain/service"
)

type fakeConversationRepo struct {
	conversations map[string]*entity.Conversation
	createdToday  int64
	countErr      error
	updatedTitles map[string]string
	titleErr      error
	touched       []string
	touchErr      error
	deleted       []string
}

func newFakeConversationRepo(conversations ...*entity.Conversation) *fakeConversationRepo {
	repo := &fakeConversationRepo{
		conversations: make(map[string]*entity.Conversation),
		updatedTitles: make(map[string]string),
	}
	for _, c := range conversations {
		repo.conversations[c.ID] = c
	}
	return repo
}

func (f *fakeConversationRepo) Create(_ context.Context, conversation *entity.Conversation) error {
	f.conversations[conversation.ID] = conversation
	return nil
}

func (f *fakeConversationRepo) GetByID(_ context.Context, id string) (*entity.Conversation, error) {
	return f.conversations[id], nil
}

func (f *fakeConversationRepo) ListByUser(_ context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Conversation], error) {
	var items []*entity.Conversation
	for _, c := range f.conversations {
		if c.UserID == userID {
			items = append(items, c)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

func (f *fakeConversationRepo) UpdateTitle(_ context.Context, id, title string) error {
	if f.titleErr != nil {
		return f.titleErr
	}
	f.updatedTitles[id] = title
	return nil
}

func (f *fakeConversationRepo) Touch(_ context.Context, id string) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeConversationRepo) Delete(_ context.Context, id string) error {
	delete(f.conversations, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeConversationRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, c := range f.conversations {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeConversationRepo) CountByUserSince(_ context.Context, _ string, _ time.Time) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.createdToday, nil
}

type fakeMessageRepo struct {
	history    []*entity.Message
	priorCount int64
	created    []*entity.Message
	createErr  error
	listErr    error
	deletedFor []string
}

func (f *fakeMessageRepo) Create(_ context.Context, message *entity.Message) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, message)
	return nil
}

func (f *fakeMessageRepo) ListByConversation(_ context.Context, _ string) ([]*entity.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.history, nil
}

func (f *fakeMessageRepo) ListRecentByConversation(_ context.Context, _ string, limit int) ([]*entity.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.history) > limit {
		return f.history[len(f.history)-limit:], nil
	}
	return f.history, nil
}

func (f *fakeMessageRepo) CountByConversation(_ context.Context, _ string) (int64, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	return f.priorCount, nil
}

func (f *fakeMessageRepo) CountByUser(_ context.Context, _ string) (int64, error) {
	return int64(len(f.created)), nil
}

func (f *fakeMessageRepo) DeleteByConversation(_ context.Context, conversationID string) error {
	f.deletedFor = append(f.deletedFor, conversationID)
	return nil
}

// fakeTx 直接执行回调，不开真实事务
type fakeTx struct {
	err error
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakeCompletionClient struct {
	resp     *service.CompletionResponse
	err      error
	requests []service.CompletionRequest
}

func (f *fakeCompletionClient) ChatCompletion(_ context.Context, req service.CompletionRequest) (*service.CompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func completionResponse(content string, totalTokens int) *service.CompletionResponse {
	return &service.CompletionResponse{
		ID:    "gen-1",
		Model: "deepseek/deepseek-r1-0528",
		Choices: []service.CompletionChoice{
			{Message: service.ChatMessage{Role: "assistant", Content: content}, FinishReason: "stop"},
		},
		Usage: service.CompletionUsage{
			PromptTokens:     totalTokens / 2,
			CompletionTokens: totalTokens - totalTokens/2,
			TotalTokens:      totalTokens,
		},
	}
}

type fakeUsageRepo struct {
	events []*entity.UsageEvent
	usage  int64
}

func (f *fakeUsageRepo) Create(_ context.Context, event *entity.UsageEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeUsageRepo) GetTokenUsage(_ context.Context, _ string, _, _ time.Time) (int64, error) {
	return f.usage, nil
}

func (f *fakeUsageRepo) ListRecent(_ context.Context, _ string, _ int) ([]*entity.UsageEvent, error) {
	return f.events, nil
}
