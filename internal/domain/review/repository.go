package review

import (
	"context"
)

// Repository 书评仓储接口
type Repository interface {
	Create(ctx context.Context, r *Review) error

	// ListByBook 按WrittenAt升序
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)
}

// BookChecker 校验图书是否存在
type BookChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}
