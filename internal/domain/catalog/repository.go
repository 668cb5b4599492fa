package catalog

import (
	"context"
)

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 模糊搜索(书名/作者姓名/类型名)
}

// AuthorRepository 作者仓储接口
type AuthorRepository interface {
	Create(ctx context.Context, a *Author) error
	FindByID(ctx context.Context, id uint) (*Author, error)
	Update(ctx context.Context, a *Author) error

	// Delete 删除作者，并在同一事务内把引用该作者的图书author_id置空
	Delete(ctx context.Context, id uint) error

	// List 按(last_name, first_name)排序
	List(ctx context.Context, params ListParams) ([]*Author, int64, error)
}

// GenreRepository 类型仓储接口
type GenreRepository interface {
	Create(ctx context.Context, g *Genre) error
	FindByID(ctx context.Context, id uint) (*Genre, error)
	Update(ctx context.Context, g *Genre) error

	// Delete 删除类型，同一事务内移除book_genres关联，图书保留
	Delete(ctx context.Context, id uint) error

	// FindByIDs 批量查询，不存在的ID直接忽略
	FindByIDs(ctx context.Context, ids []uint) ([]*Genre, error)

	// List 按名称排序
	List(ctx context.Context, params ListParams) ([]*Genre, int64, error)
}

// BookRepository 图书仓储接口
type BookRepository interface {
	// Create 创建图书及其类型关联，ISBN重复返回ErrISBNDuplicate
	Create(ctx context.Context, b *Book) error

	// FindByID 查询图书并填充Genres
	FindByID(ctx context.Context, id uint) (*Book, error)

	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书，类型关联整体替换
	Update(ctx context.Context, b *Book) error

	// Delete 仍有馆藏副本时返回ErrBookHasInstances；否则一并删除类型关联与书评
	Delete(ctx context.Context, id uint) error

	// Exists 图书是否存在
	Exists(ctx context.Context, id uint) (bool, error)

	// List 按书名排序，结果填充Genres
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// ListByAuthor 某作者的全部图书
	ListByAuthor(ctx context.Context, authorID uint) ([]*Book, error)
}
