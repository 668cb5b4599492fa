package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
)

type genreRepository struct {
	base
}

// NewGenreRepository 创建类型仓储
func NewGenreRepository(db *gorm.DB) catalog.GenreRepository {
	return &genreRepository{base{db: db}}
}

func (r *genreRepository) Create(ctx context.Context, g *catalog.Genre) error {
	model := &GenreModel{Name: g.Name, CreatedAt: g.CreatedAt}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return dbError(err, "创建类型失败")
	}
	g.ID = model.ID
	g.CreatedAt = model.CreatedAt
	return nil
}

func (r *genreRepository) FindByID(ctx context.Context, id uint) (*catalog.Genre, error) {
	model, err := findByID[GenreModel](r.getDB(ctx), id, catalog.ErrGenreNotFound)
	if err != nil {
		return nil, err
	}
	return toGenreEntity(model), nil
}

func (r *genreRepository) Update(ctx context.Context, g *catalog.Genre) error {
	result := r.getDB(ctx).Model(&GenreModel{ID: g.ID}).Update("name", g.Name)
	if result.Error != nil {
		return dbError(result.Error, "更新类型失败")
	}
	return nil
}

// Delete 删除类型
// 同一事务内先删除book_genres关联，再删除类型，图书本身不动
func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	return r.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("genre_id = ?", id).Delete(&BookGenreModel{}).Error; err != nil {
			return dbError(err, "解除图书类型关联失败")
		}
		return deleteByID[GenreModel](tx, id, catalog.ErrGenreNotFound)
	})
}

func (r *genreRepository) FindByIDs(ctx context.Context, ids []uint) ([]*catalog.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []GenreModel
	if err := r.getDB(ctx).Where("id IN ?", ids).Order("name ASC").Find(&models).Error; err != nil {
		return nil, dbError(err, "查询类型失败")
	}
	genres := make([]*catalog.Genre, len(models))
	for i := range models {
		genres[i] = toGenreEntity(&models[i])
	}
	return genres, nil
}

func (r *genreRepository) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Genre, int64, error) {
	query := r.getDB(ctx).Model(&GenreModel{})
	if params.Keyword != "" {
		query = query.Where("name LIKE ?", likePattern(params.Keyword))
	}

	models, total, err := paginate[GenreModel](query, params.Page, params.PageSize, "name ASC, id ASC")
	if err != nil {
		return nil, 0, err
	}
	genres := make([]*catalog.Genre, len(models))
	for i := range models {
		genres[i] = toGenreEntity(&models[i])
	}
	return genres, total, nil
}

func toGenreEntity(m *GenreModel) *catalog.Genre {
	return &catalog.Genre{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}
