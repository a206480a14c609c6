package dto

import (
	"time"

	"sparkchat-api/internal/domain/entity"
)

// UsageEventResponse 用量事件流水
type UsageEventResponse struct {
	ID          string    `json:"id"`
	Model       string    `json:"model"`
	TokensUsed  int       `json:"tokens_used"`
	RequestType string    `json:"request_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromUsageEvents 转换用量事件列表
func FromUsageEvents(items []*entity.UsageEvent) []*UsageEventResponse {
	out := make([]*UsageEventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, &UsageEventResponse{
			ID:          e.ID,
			Model:       e.Model,
			TokensUsed:  e.TokensUsed,
			RequestType: string(e.RequestType),
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

// SyncUserRequest 用户同步请求
type SyncUserRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UserResponse 用户信息
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromUser 转换用户实体
func FromUser(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Plan:      string(u.Plan),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
