package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
)

// bookRepository 图书仓储实现
// 1. 图书与类型的多对多关联存在book_genres表，由仓储显式维护
// 2. 读取图书时批量加载类型，避免N+1
type bookRepository struct {
	base
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) catalog.BookRepository {
	return &bookRepository{base{db: db}}
}

// Create 图书和类型关联在同一事务中写入
// ISBN唯一性由数据库UNIQUE索引保证
func (r *bookRepository) Create(ctx context.Context, b *catalog.Book) error {
	model := toBookModel(b)
	err := r.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			if isDuplicateError(err) {
				return catalog.ErrISBNDuplicate
			}
			return dbError(err, "创建图书失败")
		}
		return replaceGenres(tx, model.ID, b.GenreIDs)
	})
	if err != nil {
		return err
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*catalog.Book, error) {
	db := r.getDB(ctx)
	model, err := findByID[BookModel](db, id, catalog.ErrBookNotFound)
	if err != nil {
		return nil, err
	}
	books, err := withGenres(db, []BookModel{*model})
	if err != nil {
		return nil, err
	}
	return books[0], nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	db := r.getDB(ctx)
	var model BookModel
	if err := db.Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBookNotFound
		}
		return nil, dbError(err, "查询图书失败")
	}
	books, err := withGenres(db, []BookModel{model})
	if err != nil {
		return nil, err
	}
	return books[0], nil
}

// Update 更新字段并整体替换类型关联
func (r *bookRepository) Update(ctx context.Context, b *catalog.Book) error {
	model := toBookModel(b)
	return r.inTx(ctx, func(tx *gorm.DB) error {
		n, err := count[BookModel](tx, "id = ?", b.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return catalog.ErrBookNotFound
		}

		err = tx.Model(&BookModel{ID: b.ID}).
			Select("title", "isbn", "description", "cover_image", "published_on", "author_id", "updated_at").
			Updates(model).Error
		if err != nil {
			if isDuplicateError(err) {
				return catalog.ErrISBNDuplicate
			}
			return dbError(err, "更新图书失败")
		}
		return replaceGenres(tx, b.ID, b.GenreIDs)
	})
}

// Delete 删除图书
// 仍有馆藏副本时拒绝；否则删除类型关联和书评，再删除图书
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return r.inTx(ctx, func(tx *gorm.DB) error {
		n, err := count[BookInstanceModel](tx, "book_id = ?", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return catalog.ErrBookHasInstances
		}

		if err := tx.Where("book_id = ?", id).Delete(&BookGenreModel{}).Error; err != nil {
			return dbError(err, "删除图书类型关联失败")
		}
		if err := tx.Where("book_id = ?", id).Delete(&ReviewModel{}).Error; err != nil {
			return dbError(err, "删除图书书评失败")
		}
		return deleteByID[BookModel](tx, id, catalog.ErrBookNotFound)
	})
}

func (r *bookRepository) Exists(ctx context.Context, id uint) (bool, error) {
	n, err := count[BookModel](r.getDB(ctx), "id = ?", id)
	return n > 0, err
}

// List 按书名排序，关键词匹配书名或ISBN
func (r *bookRepository) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Book, int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&BookModel{})
	if params.Keyword != "" {
		kw := likePattern(params.Keyword)
		query = query.Where("title LIKE ? OR isbn LIKE ?", kw, kw)
	}

	models, total, err := paginate[BookModel](query, params.Page, params.PageSize, "title ASC, id ASC")
	if err != nil {
		return nil, 0, err
	}
	books, err := withGenres(db, models)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*catalog.Book, error) {
	db := r.getDB(ctx)
	var models []BookModel
	if err := db.Where("author_id = ?", authorID).Order("title ASC, id ASC").Find(&models).Error; err != nil {
		return nil, dbError(err, "查询作者图书失败")
	}
	return withGenres(db, models)
}

// =========================================
// 辅助函数
// =========================================

// replaceGenres 整体替换图书的类型关联
func replaceGenres(tx *gorm.DB, bookID uint, genreIDs []uint) error {
	if err := tx.Where("book_id = ?", bookID).Delete(&BookGenreModel{}).Error; err != nil {
		return dbError(err, "清除图书类型关联失败")
	}
	if len(genreIDs) == 0 {
		return nil
	}
	links := make([]BookGenreModel, len(genreIDs))
	for i, gid := range genreIDs {
		links[i] = BookGenreModel{BookID: bookID, GenreID: gid}
	}
	if err := tx.Create(&links).Error; err != nil {
		return dbError(err, "写入图书类型关联失败")
	}
	return nil
}

// withGenres 批量加载类型并转换为领域实体
func withGenres(db *gorm.DB, models []BookModel) ([]*catalog.Book, error) {
	books := make([]*catalog.Book, len(models))
	if len(models) == 0 {
		return books, nil
	}

	ids := make([]uint, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}

	var rows []struct {
		BookID uint
		GenreModel
	}
	err := db.Table("book_genres").
		Select("book_genres.book_id, genres.id, genres.name, genres.created_at").
		Joins("JOIN genres ON genres.id = book_genres.genre_id").
		Where("book_genres.book_id IN ?", ids).
		Order("genres.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "查询图书类型失败")
	}

	byBook := make(map[uint][]catalog.Genre, len(models))
	for _, row := range rows {
		byBook[row.BookID] = append(byBook[row.BookID], *toGenreEntity(&row.GenreModel))
	}

	for i := range models {
		b := toBookEntity(&models[i])
		b.Genres = byBook[b.ID]
		for _, g := range b.Genres {
			b.GenreIDs = append(b.GenreIDs, g.ID)
		}
		books[i] = b
	}
	return books, nil
}

func toBookModel(b *catalog.Book) *BookModel {
	return &BookModel{
		ID:          b.ID,
		Title:       b.Title,
		ISBN:        b.ISBN,
		Description: b.Description,
		CoverImage:  b.CoverImage,
		PublishedOn: b.PublishedOn,
		AuthorID:    b.AuthorID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *catalog.Book {
	return &catalog.Book{
		ID:          m.ID,
		Title:       m.Title,
		ISBN:        m.ISBN,
		Description: m.Description,
		CoverImage:  m.CoverImage,
		PublishedOn: m.PublishedOn,
		AuthorID:    m.AuthorID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
