package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/user"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// userRepository 用户仓储实现
// 1. 实现user.Repository，同时作为identity.Directory校验借阅人
// 2. 处理数据库特定的错误（如邮箱重复），转换为业务错误
type userRepository struct {
	base
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{base{db: db}}
}

// Create 邮箱唯一性由数据库UNIQUE索引保证
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Email:    u.Email,
		Password: u.Password,
		Nickname: u.Nickname,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.ErrEmailDuplicate
		}
		return dbError(err, "创建用户失败")
	}

	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	model, err := findByID[UserModel](r.getDB(ctx), id, apperrors.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	return toUserEntity(model), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserModel
	if err := r.getDB(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, dbError(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	result := r.getDB(ctx).Model(&UserModel{ID: u.ID}).
		Select("email", "password", "nickname", "updated_at").
		Updates(&UserModel{Email: u.Email, Password: u.Password, Nickname: u.Nickname, UpdatedAt: u.UpdatedAt})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return apperrors.ErrEmailDuplicate
		}
		return dbError(result.Error, "更新用户失败")
	}
	return nil
}

// Delete 软删除：DELETE会变成UPDATE deleted_at，后续查询自动过滤
// 邮箱改写为deletedEmail(id)释放唯一索引，原邮箱可以重新注册
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.inTx(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&UserModel{ID: id}).Update("email", deletedEmail(id))
		if result.Error != nil {
			return dbError(result.Error, "删除用户失败")
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrUserNotFound
		}
		return deleteByID[UserModel](tx, id, apperrors.ErrUserNotFound)
	})
}

// deletedEmail 不含@，不会与注册邮箱冲突
func deletedEmail(id uint) string {
	return fmt.Sprintf("deleted#%d", id)
}

// Exists 已软删除的用户视为不存在
func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	n, err := count[UserModel](r.getDB(ctx), "id = ?", id)
	return n > 0, err
}

func toUserEntity(model *UserModel) *user.User {
	return &user.User{
		ID:        model.ID,
		Email:     model.Email,
		Password:  model.Password,
		Nickname:  model.Nickname,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
