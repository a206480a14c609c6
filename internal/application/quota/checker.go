package quota

import (
	"context"
	"time"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/pkg/metrics"
)

// QuotaStatus 配额检查结果
type QuotaStatus struct {
	Allowed          bool  `json:"allowed"`
	DailyUsage       int64 `json:"daily_usage"`
	DailyLimit       int64 `json:"daily_limit"`
	MonthlyUsage     int64 `json:"monthly_usage"`
	MonthlyLimit     int64 `json:"monthly_limit"`
	RemainingDaily   int64 `json:"remaining_daily"`
	RemainingMonthly int64 `json:"remaining_monthly"`
}

// QuotaChecker 按套餐限额做请求前置检查。
// 检查只看当前已记账的用量：一次恰好跨过限额的请求仍会放行，
// 越界在下一次检查时才会被拦下。
type QuotaChecker struct {
	ledger *UsageLedger
	now    func() time.Time
}

// NewQuotaChecker 创建配额检查器
func NewQuotaChecker(ledger *UsageLedger) *QuotaChecker {
	return &QuotaChecker{
		ledger: ledger,
		now:    time.Now,
	}
}

// Check 检查用户在其套餐下是否还有可用额度。
// 未知套餐返回错误，不静默回退到 free。
func (c *QuotaChecker) Check(ctx context.Context, userID string, plan entity.PlanTier) (*QuotaStatus, error) {
	limits, err := entity.LimitsForPlan(plan)
	if err != nil {
		return nil, err
	}

	stats := c.ledger.Stats(ctx, userID, c.now())

	status := &QuotaStatus{
		Allowed:          stats.DailyTokens < limits.DailyTokens && stats.MonthlyTokens < limits.MonthlyTokens,
		DailyUsage:       stats.DailyTokens,
		DailyLimit:       limits.DailyTokens,
		MonthlyUsage:     stats.MonthlyTokens,
		MonthlyLimit:     limits.MonthlyTokens,
		RemainingDaily:   clampRemaining(limits.DailyTokens - stats.DailyTokens),
		RemainingMonthly: clampRemaining(limits.MonthlyTokens - stats.MonthlyTokens),
	}

	result := "allowed"
	if !status.Allowed {
		result = "rejected"
	}
	metrics.QuotaChecksTotal.WithLabelValues(string(plan), result).Inc()

	return status, nil
}

func clampRemaining(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
