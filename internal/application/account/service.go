// Package account 维护外部身份服务用户在本系统内的投影
package account

import (
	"context"
	"strings"

	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
	apperrors "sparkchat-api/pkg/errors"
)

// Service 用户账户服务
type Service struct {
	userRepo repository.UserRepository
}

func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// Sync 将身份服务下发的用户信息落到本地，存在则更新
func (s *Service) Sync(ctx context.Context, userID, email string, plan entity.PlanTier) (*entity.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.ErrPrincipalMissing
	}
	if _, err := entity.LimitsForPlan(plan); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnknownPlan, "unknown plan tier")
	}

	user := &entity.User{
		ID:    userID,
		Email: strings.TrimSpace(email),
		Plan:  plan,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to sync user")
	}
	return user, nil
}

// Get 返回本地用户投影
func (s *Service) Get(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load user")
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}
