package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitsForPlan(t *testing.T) {
	tests := []struct {
		name string
		tier PlanTier
		want PlanLimits
	}{
		{
			name: "free",
			tier: PlanFree,
			want: PlanLimits{DailyTokens: 10_000, MonthlyTokens: 100_000, ConversationsPerDay: 10, MaxTokensPerRequest: 1_000},
		},
		{
			name: "pro",
			tier: PlanPro,
			want: PlanLimits{DailyTokens: 100_000, MonthlyTokens: 1_000_000, ConversationsPerDay: 100, MaxTokensPerRequest: 4_000},
		},
		{
			name: "premium",
			tier: PlanPremium,
			want: PlanLimits{DailyTokens: 500_000, MonthlyTokens: 5_000_000, ConversationsPerDay: 500, MaxTokensPerRequest: 8_000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits, err := LimitsForPlan(tt.tier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, limits)
		})
	}
}

func TestLimitsForPlanUnknown(t *testing.T) {
	_, err := LimitsForPlan(PlanTier("enterprise"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enterprise")
}

func TestParsePlanTier(t *testing.T) {
	tier, err := ParsePlanTier("pro")
	require.NoError(t, err)
	assert.Equal(t, PlanPro, tier)

	_, err = ParsePlanTier("")
	assert.Error(t, err)

	_, err = ParsePlanTier("Free")
	assert.Error(t, err, "tier matching is case sensitive")
}

func TestNewConversationDefaultTitle(t *testing.T) {
	conv := NewConversation("user-1", "", "deepseek/deepseek-r1-0528")
	assert.Equal(t, DefaultTitle, conv.Title)
	assert.NotEmpty(t, conv.ID)

	named := NewConversation("user-1", "Trip planning", "deepseek/deepseek-r1-0528")
	assert.Equal(t, "Trip planning", named.Title)
}
