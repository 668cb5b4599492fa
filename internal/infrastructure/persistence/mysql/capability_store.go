package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// CapabilityStore 能力授予表
// 实现identity.Checker，供领域服务在变更操作前校验
type CapabilityStore struct {
	base
}

// NewCapabilityStore 创建能力存储
func NewCapabilityStore(db *gorm.DB) *CapabilityStore {
	return &CapabilityStore{base{db: db}}
}

// HasCapability 匿名用户永远返回false
func (s *CapabilityStore) HasCapability(ctx context.Context, id identity.Identity, c identity.Capability) (bool, error) {
	if id.IsAnonymous() {
		return false, nil
	}
	n, err := count[UserCapabilityModel](s.getDB(ctx), "user_id = ? AND capability = ?", id.UserID, string(c))
	return n > 0, err
}

// Grant 授予能力，重复授予不报错
func (s *CapabilityStore) Grant(ctx context.Context, userID uint, caps ...identity.Capability) error {
	for _, c := range caps {
		if !c.Valid() {
			return apperrors.New(apperrors.ErrCodeInvalidParams, "未知的能力: "+string(c))
		}
	}
	return s.inTx(ctx, func(tx *gorm.DB) error {
		for _, c := range caps {
			n, err := count[UserCapabilityModel](tx, "user_id = ? AND capability = ?", userID, string(c))
			if err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			if err := tx.Create(&UserCapabilityModel{UserID: userID, Capability: string(c)}).Error; err != nil {
				if isDuplicateError(err) {
					continue
				}
				return dbError(err, "授予能力失败")
			}
		}
		return nil
	})
}

// Revoke 撤销能力，返回实际撤销的数量
func (s *CapabilityStore) Revoke(ctx context.Context, userID uint, caps ...identity.Capability) (int64, error) {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	result := s.getDB(ctx).
		Where("user_id = ? AND capability IN ?", userID, names).
		Delete(&UserCapabilityModel{})
	if result.Error != nil {
		return 0, dbError(result.Error, "撤销能力失败")
	}
	return result.RowsAffected, nil
}

// List 用户已被授予的能力(按名称排序)
func (s *CapabilityStore) List(ctx context.Context, userID uint) ([]identity.Capability, error) {
	var names []string
	err := s.getDB(ctx).Model(&UserCapabilityModel{}).
		Where("user_id = ?", userID).
		Order("capability ASC").
		Pluck("capability", &names).Error
	if err != nil {
		return nil, dbError(err, "查询能力失败")
	}
	out := make([]identity.Capability, len(names))
	for i, n := range names {
		out[i] = identity.Capability(n)
	}
	return out, nil
}

// RevokeAll 用户删除时清空授予
func (s *CapabilityStore) RevokeAll(ctx context.Context, userID uint) error {
	if err := s.getDB(ctx).Where("user_id = ?", userID).Delete(&UserCapabilityModel{}).Error; err != nil {
		return dbError(err, "清除能力失败")
	}
	return nil
}
