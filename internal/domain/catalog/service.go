package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// AuthorInput 创建/更新作者的字段
type AuthorInput struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	DateOfDeath *time.Time
}

// Service 目录领域服务接口
// 设计说明:
// 1. 所有变更操作第一步做能力校验，缺少能力返回identity.ErrPermissionDenied
// 2. 外键引用(作者、类型)在写入前校验，不存在返回InvalidReference
// 3. 读操作公开，不做能力校验
type Service interface {
	CreateAuthor(ctx context.Context, actor identity.Identity, in AuthorInput) (*Author, error)
	UpdateAuthor(ctx context.Context, actor identity.Identity, id uint, in AuthorInput) (*Author, error)
	// DeleteAuthor 删除作者，其名下图书保留，author置空
	DeleteAuthor(ctx context.Context, actor identity.Identity, id uint) error
	GetAuthor(ctx context.Context, id uint) (*Author, error)
	ListAuthors(ctx context.Context, params ListParams) ([]*Author, int64, error)
	BooksByAuthor(ctx context.Context, authorID uint) ([]*Book, error)

	CreateGenre(ctx context.Context, actor identity.Identity, name string) (*Genre, error)
	UpdateGenre(ctx context.Context, actor identity.Identity, id uint, name string) (*Genre, error)
	// DeleteGenre 删除类型，关联图书保留，只解除关联
	DeleteGenre(ctx context.Context, actor identity.Identity, id uint) error
	GetGenre(ctx context.Context, id uint) (*Genre, error)
	ListGenres(ctx context.Context, params ListParams) ([]*Genre, int64, error)

	CreateBook(ctx context.Context, actor identity.Identity, in BookInput) (*Book, error)
	UpdateBook(ctx context.Context, actor identity.Identity, id uint, in BookInput) (*Book, error)
	DeleteBook(ctx context.Context, actor identity.Identity, id uint) error
	GetBook(ctx context.Context, id uint) (*Book, error)
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	authors AuthorRepository
	genres  GenreRepository
	books   BookRepository
	checker identity.Checker
}

// NewService 创建目录领域服务
func NewService(authors AuthorRepository, genres GenreRepository, books BookRepository, checker identity.Checker) Service {
	return &service{
		authors: authors,
		genres:  genres,
		books:   books,
		checker: checker,
	}
}

// =========================================
// 作者
// =========================================

func (s *service) CreateAuthor(ctx context.Context, actor identity.Identity, in AuthorInput) (*Author, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapAddAuthor); err != nil {
		return nil, err
	}

	author, err := NewAuthor(in.FirstName, in.LastName, in.DateOfBirth, in.DateOfDeath)
	if err != nil {
		return nil, err
	}
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *service) UpdateAuthor(ctx context.Context, actor identity.Identity, id uint, in AuthorInput) (*Author, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapChangeAuthor); err != nil {
		return nil, err
	}

	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := author.Update(in.FirstName, in.LastName, in.DateOfBirth, in.DateOfDeath); err != nil {
		return nil, err
	}
	if err := s.authors.Update(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *service) DeleteAuthor(ctx context.Context, actor identity.Identity, id uint) error {
	if err := identity.Require(ctx, s.checker, actor, identity.CapDeleteAuthor); err != nil {
		return err
	}
	return s.authors.Delete(ctx, id)
}

func (s *service) GetAuthor(ctx context.Context, id uint) (*Author, error) {
	return s.authors.FindByID(ctx, id)
}

func (s *service) ListAuthors(ctx context.Context, params ListParams) ([]*Author, int64, error) {
	return s.authors.List(ctx, params)
}

func (s *service) BooksByAuthor(ctx context.Context, authorID uint) ([]*Book, error) {
	if _, err := s.authors.FindByID(ctx, authorID); err != nil {
		return nil, err
	}
	return s.books.ListByAuthor(ctx, authorID)
}

// =========================================
// 类型
// =========================================

func (s *service) CreateGenre(ctx context.Context, actor identity.Identity, name string) (*Genre, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapAddGenre); err != nil {
		return nil, err
	}

	genre, err := NewGenre(name)
	if err != nil {
		return nil, err
	}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *service) UpdateGenre(ctx context.Context, actor identity.Identity, id uint, name string) (*Genre, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapChangeGenre); err != nil {
		return nil, err
	}

	genre, err := s.genres.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := genre.Rename(name); err != nil {
		return nil, err
	}
	if err := s.genres.Update(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *service) DeleteGenre(ctx context.Context, actor identity.Identity, id uint) error {
	if err := identity.Require(ctx, s.checker, actor, identity.CapDeleteGenre); err != nil {
		return err
	}
	return s.genres.Delete(ctx, id)
}

func (s *service) GetGenre(ctx context.Context, id uint) (*Genre, error) {
	return s.genres.FindByID(ctx, id)
}

func (s *service) ListGenres(ctx context.Context, params ListParams) ([]*Genre, int64, error) {
	return s.genres.List(ctx, params)
}

// =========================================
// 图书
// =========================================

// CreateBook 创建图书
// 业务规则:
// - 书名非空、ISBN为13位数字
// - ISBN不能重复(数据库唯一索引兜底)
// - 作者、类型必须存在
func (s *service) CreateBook(ctx context.Context, actor identity.Identity, in BookInput) (*Book, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapAddBook); err != nil {
		return nil, err
	}

	book, err := NewBook(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkISBNFree(ctx, book.ISBN, 0); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, book); err != nil {
		return nil, err
	}

	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return s.books.FindByID(ctx, book.ID)
}

func (s *service) UpdateBook(ctx context.Context, actor identity.Identity, id uint, in BookInput) (*Book, error) {
	if err := identity.Require(ctx, s.checker, actor, identity.CapChangeBook); err != nil {
		return nil, err
	}

	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := book.Apply(in); err != nil {
		return nil, err
	}
	if err := s.checkISBNFree(ctx, book.ISBN, book.ID); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, book); err != nil {
		return nil, err
	}

	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return s.books.FindByID(ctx, book.ID)
}

func (s *service) DeleteBook(ctx context.Context, actor identity.Identity, id uint) error {
	if err := identity.Require(ctx, s.checker, actor, identity.CapDeleteBook); err != nil {
		return err
	}
	return s.books.Delete(ctx, id)
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.books.FindByID(ctx, id)
}

func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.books.List(ctx, params)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

// checkISBNFree ISBN未被selfID以外的图书占用
func (s *service) checkISBNFree(ctx context.Context, isbn string, selfID uint) error {
	existing, err := s.books.FindByISBN(ctx, isbn)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrISBNDuplicate
	}
	return nil
}

// checkReferences 作者和全部类型必须存在
func (s *service) checkReferences(ctx context.Context, b *Book) error {
	if b.AuthorID != nil {
		if _, err := s.authors.FindByID(ctx, *b.AuthorID); err != nil {
			if apperrors.IsNotFound(err) {
				return ErrAuthorReference
			}
			return err
		}
	}

	if len(b.GenreIDs) > 0 {
		genres, err := s.genres.FindByIDs(ctx, b.GenreIDs)
		if err != nil {
			return err
		}
		if len(genres) != len(b.GenreIDs) {
			return ErrGenreReference
		}
	}
	return nil
}
