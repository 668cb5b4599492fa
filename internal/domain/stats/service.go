package stats

import (
	"context"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/review"
)

// BookChecker 校验图书是否存在
type BookChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// InstanceLister 按图书列出副本
type InstanceLister interface {
	ListByBook(ctx context.Context, bookID uint) ([]*instance.BookInstance, error)
}

// ReviewLister 按图书列出书评
type ReviewLister interface {
	ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error)
}

// SummaryRepository 全站计数
type SummaryRepository interface {
	Summary(ctx context.Context) (*Summary, error)
}

// Service 聚合查询服务
// 每次调用都重新计算，不做缓存
type Service struct {
	books     BookChecker
	instances InstanceLister
	reviews   ReviewLister
	summary   SummaryRepository
}

// NewService 创建聚合查询服务
func NewService(books BookChecker, instances InstanceLister, reviews ReviewLister, summary SummaryRepository) *Service {
	return &Service{books: books, instances: instances, reviews: reviews, summary: summary}
}

// ForBook 一次读取副本和书评，返回完整聚合视图
// 图书不存在返回catalog.ErrBookNotFound
func (s *Service) ForBook(ctx context.Context, bookID uint) (*BookStats, error) {
	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, catalog.ErrBookNotFound
	}

	instances, err := s.instances.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return Compute(bookID, instances, reviews), nil
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	return s.summary.Summary(ctx)
}
