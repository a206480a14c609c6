package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkchat-api/internal/domain/entity"
)

type fakeUsageRepo struct {
	events    []*entity.UsageEvent
	createErr error
	usage     map[string]int64
	usageErr  error
}

func (f *fakeUsageRepo) Create(_ context.Context, event *entity.UsageEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeUsageRepo) GetTokenUsage(_ context.Context, userID string, _, _ time.Time) (int64, error) {
	if f.usageErr != nil {
		return 0, f.usageErr
	}
	return f.usage[userID], nil
}

func (f *fakeUsageRepo) ListRecent(_ context.Context, _ string, _ int) ([]*entity.UsageEvent, error) {
	return f.events, nil
}

type fakePublisher struct {
	published []*entity.UsageEvent
	err       error
}

func (f *fakePublisher) PublishUsageRecorded(_ context.Context, event *entity.UsageEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, event)
	return "1-0", nil
}

func TestLedgerRecord(t *testing.T) {
	repo := &fakeUsageRepo{}
	pub := &fakePublisher{}
	ledger := NewUsageLedger(repo, pub)

	outcome := ledger.Record(context.Background(), RecordInput{
		UserID: "user-1",
		Tokens: 120,
		Model:  "deepseek/deepseek-r1-0528",
	})

	require.False(t, outcome.Failed())
	require.Len(t, repo.events, 1)
	event := repo.events[0]
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, 120, event.TokensUsed)
	assert.Equal(t, entity.RequestTypeChat, event.RequestType, "request type defaults to chat")
	assert.Equal(t, outcome.EventID, event.ID)

	require.Len(t, pub.published, 1)
	assert.Equal(t, event.ID, pub.published[0].ID)
}

func TestLedgerRecordValidation(t *testing.T) {
	repo := &fakeUsageRepo{}
	ledger := NewUsageLedger(repo, nil)

	outcome := ledger.Record(context.Background(), RecordInput{UserID: "  ", Tokens: 10})
	assert.True(t, outcome.Failed())

	outcome = ledger.Record(context.Background(), RecordInput{UserID: "user-1", Tokens: -1})
	assert.True(t, outcome.Failed())

	assert.Empty(t, repo.events, "invalid input never reaches the repository")
}

func TestLedgerRecordRepoFailure(t *testing.T) {
	repo := &fakeUsageRepo{createErr: errors.New("connection refused")}
	pub := &fakePublisher{}
	ledger := NewUsageLedger(repo, pub)

	outcome := ledger.Record(context.Background(), RecordInput{UserID: "user-1", Tokens: 42})
	assert.True(t, outcome.Failed())
	assert.Empty(t, outcome.EventID)
	assert.Empty(t, pub.published, "nothing is published when the write fails")
}

func TestLedgerRecordPublisherFailure(t *testing.T) {
	repo := &fakeUsageRepo{}
	pub := &fakePublisher{err: errors.New("stream unavailable")}
	ledger := NewUsageLedger(repo, pub)

	outcome := ledger.Record(context.Background(), RecordInput{UserID: "user-1", Tokens: 42})
	assert.False(t, outcome.Failed(), "publish failures do not fail the record")
	assert.Len(t, repo.events, 1)
}

func TestLedgerUsageFailOpen(t *testing.T) {
	repo := &fakeUsageRepo{usageErr: errors.New("timeout")}
	ledger := NewUsageLedger(repo, nil)

	asOf := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Zero(t, ledger.DailyUsage(context.Background(), "user-1", asOf))
	assert.Zero(t, ledger.MonthlyUsage(context.Background(), "user-1", asOf))

	stats := ledger.Stats(context.Background(), "user-1", asOf)
	assert.Zero(t, stats.DailyTokens)
	assert.Zero(t, stats.MonthlyTokens)
}

func TestLedgerStats(t *testing.T) {
	repo := &fakeUsageRepo{usage: map[string]int64{"user-1": 9_500}}
	ledger := NewUsageLedger(repo, nil)

	stats := ledger.Stats(context.Background(), "user-1", time.Now())
	assert.Equal(t, int64(9_500), stats.DailyTokens)
	assert.Equal(t, int64(9_500), stats.MonthlyTokens)
}

func TestPeriodStarts(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	asOf := time.Date(2025, 6, 15, 23, 45, 0, 0, loc)

	day := DayStart(asOf)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), day)

	month := MonthStart(asOf)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, loc), month)
}
