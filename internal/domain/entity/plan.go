// Package entity 定义领域实体
package entity

import "fmt"

// PlanTier 套餐等级（闭合枚举，未知等级显式拒绝）
type PlanTier string

const (
	PlanFree    PlanTier = "free"
	PlanPro     PlanTier = "pro"
	PlanPremium PlanTier = "premium"
)

// ParsePlanTier 解析套餐等级字符串
func ParsePlanTier(s string) (PlanTier, error) {
	switch PlanTier(s) {
	case PlanFree, PlanPro, PlanPremium:
		return PlanTier(s), nil
	default:
		return "", fmt.Errorf("unknown plan tier: %q", s)
	}
}

// PlanLimits 套餐用量限额（静态配置，运行时不可修改）
type PlanLimits struct {
	DailyTokens         int64 `json:"daily_tokens"`
	MonthlyTokens       int64 `json:"monthly_tokens"`
	ConversationsPerDay int64 `json:"conversations_per_day"`
	MaxTokensPerRequest int   `json:"max_tokens_per_request"`
}

var planLimits = map[PlanTier]PlanLimits{
	PlanFree: {
		DailyTokens:         10_000,
		MonthlyTokens:       100_000,
		ConversationsPerDay: 10,
		MaxTokensPerRequest: 1_000,
	},
	PlanPro: {
		DailyTokens:         100_000,
		MonthlyTokens:       1_000_000,
		ConversationsPerDay: 100,
		MaxTokensPerRequest: 4_000,
	},
	PlanPremium: {
		DailyTokens:         500_000,
		MonthlyTokens:       5_000_000,
		ConversationsPerDay: 500,
		MaxTokensPerRequest: 8_000,
	},
}

// LimitsForPlan 返回套餐限额，未知套餐返回错误而非回退到 free
func LimitsForPlan(tier PlanTier) (PlanLimits, error) {
	limits, ok := planLimits[tier]
	if !ok {
		return PlanLimits{}, fmt.Errorf("unknown plan tier: %q", tier)
	}
	return limits, nil
}
