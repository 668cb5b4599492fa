package review

import (
	"context"
	"time"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
)

// AddInput 新增书评参数
type AddInput struct {
	BookID    uint
	Writer    string
	Body      string
	Stars     int
	WrittenAt time.Time // 零值表示当前时间
}

// Service 书评领域服务
type Service interface {
	// AddReview 需要登录，图书不存在返回InvalidReference
	AddReview(ctx context.Context, actor identity.Identity, in AddInput) (*Review, error)
	// ListByBook 图书不存在返回ErrBookNotFound
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)
}

type service struct {
	repo   Repository
	books  BookChecker
	rating Rating
}

// NewService 创建书评领域服务
func NewService(repo Repository, books BookChecker, rating Rating) Service {
	return &service{repo: repo, books: books, rating: rating}
}

func (s *service) AddReview(ctx context.Context, actor identity.Identity, in AddInput) (*Review, error) {
	if err := identity.RequireLogin(actor); err != nil {
		return nil, err
	}

	r, err := NewReview(in.BookID, in.Writer, in.Body, in.Stars, in.WrittenAt, s.rating)
	if err != nil {
		return nil, err
	}

	exists, err := s.books.Exists(ctx, in.BookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrBookReference
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) ListByBook(ctx context.Context, bookID uint) ([]*Review, error) {
	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrBookNotFound
	}
	return s.repo.ListByBook(ctx, bookID)
}
