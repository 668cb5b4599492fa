package user

import (
	"context"
)

// Repository 用户仓储接口
// 实现同时满足identity.Directory(Exists)
type Repository interface {
	// Create 邮箱已存在返回errors.ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在返回errors.ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 不存在返回errors.ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	// Delete 软删除
	Delete(ctx context.Context, id uint) error

	// Exists 用户是否存在(已软删除视为不存在)
	Exists(ctx context.Context, id uint) (bool, error)
}
