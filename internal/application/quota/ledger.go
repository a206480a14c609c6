// Package quota 提供用量记账与配额检查能力。
//
// 配额检查与用量写入之间没有锁或事务：同一用户的并发请求可能都在记账前
// 通过检查，短暂超出限额，上限为 并发请求数 × max_tokens_per_request。
// 这是有意的取舍，额度按请求前置闸门执行，不做原子扣减。
package quota

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
	"sparkchat-api/pkg/logger"
	"sparkchat-api/pkg/metrics"
)

// RecordInput 一次用量记账的输入
type RecordInput struct {
	UserID      string
	Tokens      int
	Model       string
	RequestType entity.RequestType
}

// RecordOutcome 记账结果。记账是 best-effort：失败不会中断调用方的主流程，
// 调用方可以检查 Err，也可以直接忽略。
type RecordOutcome struct {
	EventID string
	Err     error
}

// Failed 记账是否失败
func (o RecordOutcome) Failed() bool {
	return o.Err != nil
}

// UsageStats 某一时刻的日/月用量汇总
type UsageStats struct {
	DailyTokens   int64 `json:"daily_tokens"`
	MonthlyTokens int64 `json:"monthly_tokens"`
}

// UsagePublisher 记账成功后的事件发布方
type UsagePublisher interface {
	PublishUsageRecorded(ctx context.Context, event *entity.UsageEvent) (string, error)
}

// UsageLedger 按用户记录 token 消耗并回答周期用量
type UsageLedger struct {
	usageRepo repository.UsageEventRepository
	publisher UsagePublisher
	now       func() time.Time
}

// NewUsageLedger 创建用量账本。publisher 可为 nil，此时不发布事件。
func NewUsageLedger(usageRepo repository.UsageEventRepository, publisher UsagePublisher) *UsageLedger {
	return &UsageLedger{
		usageRepo: usageRepo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Record 追加一条用量事件。
// 写入失败只记录日志和指标，结果通过 RecordOutcome 暴露，不抛给调用方。
func (l *UsageLedger) Record(ctx context.Context, in RecordInput) RecordOutcome {
	if l == nil || l.usageRepo == nil {
		return RecordOutcome{}
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return RecordOutcome{Err: fmt.Errorf("usage record skipped: empty user id")}
	}
	if in.Tokens < 0 {
		return RecordOutcome{Err: fmt.Errorf("usage record skipped: negative tokens %d", in.Tokens)}
	}

	requestType := in.RequestType
	if requestType == "" {
		requestType = entity.RequestTypeChat
	}

	event := entity.NewUsageEvent(userID, strings.TrimSpace(in.Model), in.Tokens, requestType)
	if err := l.usageRepo.Create(ctx, event); err != nil {
		metrics.UsageRecordFailures.Inc()
		logger.Warn(ctx, "failed to record usage event",
			"user_id", userID,
			"tokens", in.Tokens,
			"error", err.Error(),
		)
		return RecordOutcome{Err: err}
	}

	// 发布失败不影响记账结果，下游只做缓存失效等旁路处理
	if l.publisher != nil {
		if _, err := l.publisher.PublishUsageRecorded(ctx, event); err != nil {
			logger.Warn(ctx, "failed to publish usage event",
				"event_id", event.ID,
				"error", err.Error(),
			)
		}
	}

	return RecordOutcome{EventID: event.ID}
}

// DailyUsage 返回 asOf 当天（asOf 时区的本地零点起）的 token 消耗。
// 查询失败时返回 0（读路径 fail-open，不向上层抛错）。
func (l *UsageLedger) DailyUsage(ctx context.Context, userID string, asOf time.Time) int64 {
	start := DayStart(asOf)
	return l.usageSince(ctx, userID, start, start.AddDate(0, 0, 1))
}

// MonthlyUsage 返回 asOf 当月（本地月初零点起）的 token 消耗。
// 查询失败时返回 0。
func (l *UsageLedger) MonthlyUsage(ctx context.Context, userID string, asOf time.Time) int64 {
	start := MonthStart(asOf)
	return l.usageSince(ctx, userID, start, start.AddDate(0, 1, 0))
}

// Stats 并发获取日/月用量（两个独立聚合，无相互依赖）
func (l *UsageLedger) Stats(ctx context.Context, userID string, asOf time.Time) UsageStats {
	var stats UsageStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats.DailyTokens = l.DailyUsage(gctx, userID, asOf)
		return nil
	})
	g.Go(func() error {
		stats.MonthlyTokens = l.MonthlyUsage(gctx, userID, asOf)
		return nil
	})
	_ = g.Wait()

	return stats
}

func (l *UsageLedger) usageSince(ctx context.Context, userID string, start, end time.Time) int64 {
	used, err := l.usageRepo.GetTokenUsage(ctx, userID, start, end)
	if err != nil {
		logger.Warn(ctx, "failed to query token usage, treating as zero",
			"user_id", userID,
			"period_start", start,
			"error", err.Error(),
		)
		return 0
	}
	return used
}

// DayStart 返回 t 所在时区的当日零点
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthStart 返回 t 所在时区的当月一日零点
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
