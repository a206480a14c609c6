// Package usage 提供用量统计与额度查询
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sparkchat-api/internal/application/quota"
	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
	"sparkchat-api/internal/infrastructure/persistence/redis"
	apperrors "sparkchat-api/pkg/errors"
	"sparkchat-api/pkg/logger"
)

const (
	// statsCacheTTL 用量汇总的缓存时长。
	// 汇总走全表 SUM，量大时较贵；额度是前置闸门，短暂滞后可以接受。
	statsCacheTTL = 30 * time.Second

	recentActivityLimit = 50
)

// Overview 用户当前周期的用量与剩余额度
type Overview struct {
	Plan             entity.PlanTier `json:"plan"`
	DailyUsage       int64           `json:"daily_usage"`
	DailyLimit       int64           `json:"daily_limit"`
	MonthlyUsage     int64           `json:"monthly_usage"`
	MonthlyLimit     int64           `json:"monthly_limit"`
	RemainingDaily   int64           `json:"remaining_daily"`
	RemainingMonthly int64           `json:"remaining_monthly"`
	Conversations    int64           `json:"conversations"`
	Messages         int64           `json:"messages"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// Service 用量查询服务
type Service struct {
	ledger           *quota.UsageLedger
	checker          *quota.QuotaChecker
	usageRepo        repository.UsageEventRepository
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	cache            *redis.Cache
	now              func() time.Time
}

func NewService(
	ledger *quota.UsageLedger,
	checker *quota.QuotaChecker,
	usageRepo repository.UsageEventRepository,
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	cache *redis.Cache,
) *Service {
	return &Service{
		ledger:           ledger,
		checker:          checker,
		usageRepo:        usageRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		cache:            cache,
		now:              time.Now,
	}
}

// Overview 返回用户当前周期的用量汇总，带短 TTL 缓存
func (s *Service) Overview(ctx context.Context, userID string, plan entity.PlanTier) (*Overview, error) {
	key := fmt.Sprintf("usage:overview:%s", userID)

	data, err := s.cache.GetOrLoad(ctx, key, statsCacheTTL, func() (interface{}, error) {
		return s.buildOverview(ctx, userID, plan)
	})
	if err != nil {
		return nil, err
	}

	var overview Overview
	if err := json.Unmarshal(data, &overview); err != nil {
		// 缓存内容损坏时直接重建
		logger.FromContext(ctx).Warn("corrupt usage overview cache, rebuilding", "user_id", userID, "error", err)
		return s.buildOverview(ctx, userID, plan)
	}
	return &overview, nil
}

func (s *Service) buildOverview(ctx context.Context, userID string, plan entity.PlanTier) (*Overview, error) {
	status, err := s.checker.Check(ctx, userID, plan)
	if err != nil {
		return nil, err
	}

	conversations, err := s.conversationRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to count conversations")
	}
	messages, err := s.messageRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to count messages")
	}

	return &Overview{
		Plan:             plan,
		DailyUsage:       status.DailyUsage,
		DailyLimit:       status.DailyLimit,
		MonthlyUsage:     status.MonthlyUsage,
		MonthlyLimit:     status.MonthlyLimit,
		RemainingDaily:   status.RemainingDaily,
		RemainingMonthly: status.RemainingMonthly,
		Conversations:    conversations,
		Messages:         messages,
		GeneratedAt:      s.now(),
	}, nil
}

// RecentActivity 返回最近的用量事件流水
func (s *Service) RecentActivity(ctx context.Context, userID string, limit int) ([]*entity.UsageEvent, error) {
	if limit <= 0 || limit > recentActivityLimit {
		limit = recentActivityLimit
	}
	events, err := s.usageRepo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list usage events")
	}
	return events, nil
}

// PlanInfo 套餐信息
type PlanInfo struct {
	Tier   entity.PlanTier   `json:"tier"`
	Limits entity.PlanLimits `json:"limits"`
}

// Plans 返回全部套餐及其限额
func (s *Service) Plans() []PlanInfo {
	tiers := []entity.PlanTier{entity.PlanFree, entity.PlanPro, entity.PlanPremium}
	infos := make([]PlanInfo, 0, len(tiers))
	for _, tier := range tiers {
		limits, err := entity.LimitsForPlan(tier)
		if err != nil {
			continue
		}
		infos = append(infos, PlanInfo{Tier: tier, Limits: limits})
	}
	return infos
}

// InvalidateOverview 清除用户用量汇总缓存
func (s *Service) InvalidateOverview(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, fmt.Sprintf("usage:overview:%s", userID))
}
