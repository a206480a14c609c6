// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sparkchat-api/internal/domain/entity"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
