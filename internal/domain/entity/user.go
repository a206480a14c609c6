// Package entity 定义领域实体
package entity

import "time"

// User 外部身份服务的用户在本系统内的投影。
// ID 使用身份服务下发的 subject，不在本地生成。
type User struct {
	ID        string    `json:"id" gorm:"type:text;primaryKey"`
	Email     string    `json:"email" gorm:"type:text;not null"`
	Plan      PlanTier  `json:"plan" gorm:"type:varchar(16);not null;default:'free'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
