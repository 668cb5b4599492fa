package instance

import (
	"context"

	"github.com/google/uuid"
)

// Repository 馆藏副本仓储接口
type Repository interface {
	Create(ctx context.Context, inst *BookInstance) error
	FindByID(ctx context.Context, id uuid.UUID) (*BookInstance, error)
	UpdateImprint(ctx context.Context, inst *BookInstance) error

	// UpdateStatus 以from为期望旧状态做比较并交换
	// 记录已不是from状态时返回ErrStatusConflict，记录不存在返回ErrInstanceNotFound
	UpdateStatus(ctx context.Context, inst *BookInstance, from Status) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ListByBook 按创建时间排序
	ListByBook(ctx context.Context, bookID uint) ([]*BookInstance, error)

	// ListByBorrower status为空时不过滤状态
	ListByBorrower(ctx context.Context, borrowerID uint, status Status) ([]*BookInstance, error)

	// ListLoaned 所有借阅人非空的副本
	ListLoaned(ctx context.Context) ([]*BookInstance, error)

	// ClearBorrower 借阅人被删除时置空，返回受影响行数
	ClearBorrower(ctx context.Context, borrowerID uint) (int64, error)
}

// BookChecker 校验图书是否存在(catalog.BookRepository满足此接口)
type BookChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}
