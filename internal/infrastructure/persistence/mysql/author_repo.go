package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
)

// authorRepository 作者仓储实现
type authorRepository struct {
	base
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) catalog.AuthorRepository {
	return &authorRepository{base{db: db}}
}

func (r *authorRepository) Create(ctx context.Context, a *catalog.Author) error {
	model := toAuthorModel(a)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return dbError(err, "创建作者失败")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *authorRepository) FindByID(ctx context.Context, id uint) (*catalog.Author, error) {
	model, err := findByID[AuthorModel](r.getDB(ctx), id, catalog.ErrAuthorNotFound)
	if err != nil {
		return nil, err
	}
	return toAuthorEntity(model), nil
}

func (r *authorRepository) Update(ctx context.Context, a *catalog.Author) error {
	model := toAuthorModel(a)
	result := r.getDB(ctx).Model(&AuthorModel{ID: a.ID}).
		Select("first_name", "last_name", "date_of_birth", "date_of_death", "updated_at").
		Updates(model)
	if result.Error != nil {
		return dbError(result.Error, "更新作者失败")
	}
	return nil
}

// Delete 删除作者
// 同一事务内先把books.author_id置空，再删除作者，图书本身保留
func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	return r.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&BookModel{}).
			Where("author_id = ?", id).
			Update("author_id", gorm.Expr("NULL")).Error; err != nil {
			return dbError(err, "解除图书作者关联失败")
		}
		return deleteByID[AuthorModel](tx, id, catalog.ErrAuthorNotFound)
	})
}

// List 按(last_name, first_name)排序
func (r *authorRepository) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Author, int64, error) {
	query := r.getDB(ctx).Model(&AuthorModel{})
	if params.Keyword != "" {
		kw := likePattern(params.Keyword)
		query = query.Where("first_name LIKE ? OR last_name LIKE ?", kw, kw)
	}

	models, total, err := paginate[AuthorModel](query, params.Page, params.PageSize, "last_name ASC, first_name ASC, id ASC")
	if err != nil {
		return nil, 0, err
	}

	authors := make([]*catalog.Author, len(models))
	for i := range models {
		authors[i] = toAuthorEntity(&models[i])
	}
	return authors, total, nil
}

func toAuthorModel(a *catalog.Author) *AuthorModel {
	return &AuthorModel{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DateOfBirth: a.DateOfBirth,
		DateOfDeath: a.DateOfDeath,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toAuthorEntity(m *AuthorModel) *catalog.Author {
	return &catalog.Author{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		DateOfBirth: m.DateOfBirth,
		DateOfDeath: m.DateOfDeath,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
