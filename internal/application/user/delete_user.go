package user

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/internal/domain/user"
)

// Transactor 事务执行器(mysql.TxManager满足此接口)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BorrowerClearer 借阅人置空(instance.Repository满足此接口)
type BorrowerClearer interface {
	ClearBorrower(ctx context.Context, borrowerID uint) (int64, error)
}

// CapabilityRevoker 撤销全部能力(mysql.CapabilityStore满足此接口)
type CapabilityRevoker interface {
	RevokeAll(ctx context.Context, userID uint) error
}

// DeleteUserUseCase 删除用户用例
// 设计说明:
// 1. 需要auth.delete_user能力
// 2. 同一事务内：副本借阅人置空(状态不变) → 撤销能力 → 软删除用户
// 3. 事务提交后清理Redis会话，失败只记日志
type DeleteUserUseCase struct {
	checker   identity.Checker
	tx        Transactor
	users     user.Repository
	instances BorrowerClearer
	caps      CapabilityRevoker
	sessions  SessionStore
}

func NewDeleteUserUseCase(
	checker identity.Checker,
	tx Transactor,
	users user.Repository,
	instances BorrowerClearer,
	caps CapabilityRevoker,
	sessions SessionStore,
) *DeleteUserUseCase {
	return &DeleteUserUseCase{
		checker:   checker,
		tx:        tx,
		users:     users,
		instances: instances,
		caps:      caps,
		sessions:  sessions,
	}
}

// DeleteUserResponse 删除结果
type DeleteUserResponse struct {
	UserID           uint  `json:"user_id"`
	ClearedInstances int64 `json:"cleared_instances"`
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, actor identity.Identity, userID uint) (*DeleteUserResponse, error) {
	if err := identity.Require(ctx, uc.checker, actor, identity.CapDeleteUser); err != nil {
		return nil, err
	}

	var cleared int64
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := uc.users.FindByID(ctx, userID); err != nil {
			return err
		}

		n, err := uc.instances.ClearBorrower(ctx, userID)
		if err != nil {
			return err
		}
		cleared = n

		if err := uc.caps.RevokeAll(ctx, userID); err != nil {
			return err
		}
		return uc.users.Delete(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	if uc.sessions != nil {
		if err := uc.sessions.DeleteSession(ctx, userID); err != nil {
			slog.WarnContext(ctx, "清理会话失败", "user_id", userID, "error", err)
		}
	}

	slog.InfoContext(ctx, "用户已删除", "user_id", userID, "actor_id", actor.UserID, "cleared_instances", cleared)
	return &DeleteUserResponse{UserID: userID, ClearedInstances: cleared}, nil
}
