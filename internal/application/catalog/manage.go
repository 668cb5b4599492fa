package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/identity"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
	"github.com/xiebiao/library-catalog/pkg/metrics"
)

// BookRequest 创建/更新图书
type BookRequest struct {
	Title       string
	ISBN        string
	Description string
	CoverImage  string
	PublishedOn *time.Time
	AuthorID    *uint
	GenreIDs    []uint
}

// AuthorRequest 创建/更新作者
type AuthorRequest struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	DateOfDeath *time.Time
}

// ManageUseCase 目录维护用例(图书、作者、类型的增删改)
// 能力校验在领域服务中完成，这里只负责DTO转换和拒绝计数
type ManageUseCase struct {
	svc        catalog.Service
	genreLimit int
}

func NewManageUseCase(svc catalog.Service, genreLimit int) *ManageUseCase {
	return &ManageUseCase{svc: svc, genreLimit: genreLimit}
}

func (uc *ManageUseCase) CreateBook(ctx context.Context, actor identity.Identity, req BookRequest) (*BookInfo, error) {
	b, err := uc.svc.CreateBook(ctx, actor, req.input())
	if err != nil {
		return nil, denied(err, identity.CapAddBook)
	}
	return uc.bookInfo(ctx, b)
}

func (uc *ManageUseCase) UpdateBook(ctx context.Context, actor identity.Identity, id uint, req BookRequest) (*BookInfo, error) {
	b, err := uc.svc.UpdateBook(ctx, actor, id, req.input())
	if err != nil {
		return nil, denied(err, identity.CapChangeBook)
	}
	return uc.bookInfo(ctx, b)
}

func (uc *ManageUseCase) DeleteBook(ctx context.Context, actor identity.Identity, id uint) error {
	return denied(uc.svc.DeleteBook(ctx, actor, id), identity.CapDeleteBook)
}

func (uc *ManageUseCase) CreateAuthor(ctx context.Context, actor identity.Identity, req AuthorRequest) (*AuthorItem, error) {
	a, err := uc.svc.CreateAuthor(ctx, actor, req.input())
	if err != nil {
		return nil, denied(err, identity.CapAddAuthor)
	}
	item := toAuthorItem(a)
	return &item, nil
}

func (uc *ManageUseCase) UpdateAuthor(ctx context.Context, actor identity.Identity, id uint, req AuthorRequest) (*AuthorItem, error) {
	a, err := uc.svc.UpdateAuthor(ctx, actor, id, req.input())
	if err != nil {
		return nil, denied(err, identity.CapChangeAuthor)
	}
	item := toAuthorItem(a)
	return &item, nil
}

// DeleteAuthor 名下图书保留，作者置空
func (uc *ManageUseCase) DeleteAuthor(ctx context.Context, actor identity.Identity, id uint) error {
	return denied(uc.svc.DeleteAuthor(ctx, actor, id), identity.CapDeleteAuthor)
}

func (uc *ManageUseCase) CreateGenre(ctx context.Context, actor identity.Identity, name string) (*GenreItem, error) {
	g, err := uc.svc.CreateGenre(ctx, actor, name)
	if err != nil {
		return nil, denied(err, identity.CapAddGenre)
	}
	item := toGenreItem(g)
	return &item, nil
}

func (uc *ManageUseCase) UpdateGenre(ctx context.Context, actor identity.Identity, id uint, name string) (*GenreItem, error) {
	g, err := uc.svc.UpdateGenre(ctx, actor, id, name)
	if err != nil {
		return nil, denied(err, identity.CapChangeGenre)
	}
	item := toGenreItem(g)
	return &item, nil
}

// DeleteGenre 关联图书保留
func (uc *ManageUseCase) DeleteGenre(ctx context.Context, actor identity.Identity, id uint) error {
	return denied(uc.svc.DeleteGenre(ctx, actor, id), identity.CapDeleteGenre)
}

// AuthorDetail 作者及其作品
type AuthorDetail struct {
	Author AuthorItem `json:"author"`
	Books  []BookItem `json:"books"`
}

func (uc *ManageUseCase) GetAuthor(ctx context.Context, id uint) (*AuthorDetail, error) {
	a, err := uc.svc.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	books, err := uc.svc.BooksByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &AuthorDetail{Author: toAuthorItem(a), Books: make([]BookItem, len(books))}
	for i, b := range books {
		out.Books[i] = toBookItem(b, uc.genreLimit)
	}
	return out, nil
}

func (uc *ManageUseCase) GetGenre(ctx context.Context, id uint) (*GenreItem, error) {
	g, err := uc.svc.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}
	item := toGenreItem(g)
	return &item, nil
}

// bookInfo 写入后重新读取，带上作者与类型名称
func (uc *ManageUseCase) bookInfo(ctx context.Context, b *catalog.Book) (*BookInfo, error) {
	fresh, err := uc.svc.GetBook(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	var author *catalog.Author
	if fresh.AuthorID != nil {
		if author, err = uc.svc.GetAuthor(ctx, *fresh.AuthorID); err != nil {
			return nil, err
		}
	}
	info := toBookInfo(fresh, author, uc.genreLimit)
	return &info, nil
}

func (r BookRequest) input() catalog.BookInput {
	return catalog.BookInput{
		Title:       r.Title,
		ISBN:        r.ISBN,
		Description: r.Description,
		CoverImage:  r.CoverImage,
		PublishedOn: r.PublishedOn,
		AuthorID:    r.AuthorID,
		GenreIDs:    r.GenreIDs,
	}
}

func (r AuthorRequest) input() catalog.AuthorInput {
	return catalog.AuthorInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		DateOfDeath: r.DateOfDeath,
	}
}

// denied 权限拒绝计数，原样返回err
func denied(err error, c identity.Capability) error {
	if err != nil && apperrors.IsPermissionDenied(err) {
		metrics.RecordPermissionDenied(string(c))
	}
	return err
}
