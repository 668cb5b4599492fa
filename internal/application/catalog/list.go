package catalog

import (
	"context"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
)

// MaxPageSize 每页最大条数
const MaxPageSize = 100

// PageQuery 分页查询参数
type PageQuery struct {
	Page     int
	PageSize int
	Keyword  string
}

// PageResult 分页结果
type PageResult[R any] struct {
	List       []R   `json:"list"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ListUseCase 通用列表用例
// E为领域实体，R为列表项DTO；图书、作者、类型共用一套分页逻辑
type ListUseCase[E any, R any] struct {
	list        func(ctx context.Context, params catalog.ListParams) ([]E, int64, error)
	convert     func(E) R
	defaultSize int
}

// NewListUseCase defaultSize<=0时取10
func NewListUseCase[E any, R any](
	list func(ctx context.Context, params catalog.ListParams) ([]E, int64, error),
	convert func(E) R,
	defaultSize int,
) *ListUseCase[E, R] {
	if defaultSize <= 0 {
		defaultSize = 10
	}
	return &ListUseCase[E, R]{list: list, convert: convert, defaultSize: defaultSize}
}

// Execute 参数默认值与范围限制(page默认1，pageSize最大100)后查询
func (uc *ListUseCase[E, R]) Execute(ctx context.Context, q PageQuery) (*PageResult[R], error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = uc.defaultSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}

	items, total, err := uc.list(ctx, catalog.ListParams{Page: q.Page, PageSize: q.PageSize, Keyword: q.Keyword})
	if err != nil {
		return nil, err
	}

	list := make([]R, len(items))
	for i, it := range items {
		list[i] = uc.convert(it)
	}

	totalPages := int(total) / q.PageSize
	if int(total)%q.PageSize != 0 {
		totalPages++
	}
	return &PageResult[R]{
		List:       list,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// 具体列表用例
type (
	ListBooksUseCase   = ListUseCase[*catalog.Book, BookItem]
	ListAuthorsUseCase = ListUseCase[*catalog.Author, AuthorItem]
	ListGenresUseCase  = ListUseCase[*catalog.Genre, GenreItem]
)

// NewListBooksUseCase 按书名排序，类型展示取前genreLimit个
func NewListBooksUseCase(svc catalog.Service, pageSize, genreLimit int) *ListBooksUseCase {
	return NewListUseCase(svc.ListBooks, func(b *catalog.Book) BookItem {
		return toBookItem(b, genreLimit)
	}, pageSize)
}

// NewListAuthorsUseCase 按(姓, 名)排序
func NewListAuthorsUseCase(svc catalog.Service, pageSize int) *ListAuthorsUseCase {
	return NewListUseCase(svc.ListAuthors, toAuthorItem, pageSize)
}

// NewListGenresUseCase 按名称排序
func NewListGenresUseCase(svc catalog.Service, pageSize int) *ListGenresUseCase {
	return NewListUseCase(svc.ListGenres, toGenreItem, pageSize)
}
