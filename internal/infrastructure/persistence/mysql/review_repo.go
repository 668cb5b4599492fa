package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/review"
)

type reviewRepository struct {
	base
}

// NewReviewRepository 创建书评仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{base{db: db}}
}

func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{
		BookID:    rv.BookID,
		Writer:    rv.Writer,
		Body:      rv.Body,
		Stars:     rv.Stars,
		WrittenAt: rv.WrittenAt,
		CreatedAt: rv.CreatedAt,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return dbError(err, "创建书评失败")
	}
	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	return nil
}

// ListByBook 按撰写时间升序
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error) {
	var models []ReviewModel
	err := r.getDB(ctx).
		Where("book_id = ?", bookID).
		Order("written_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, dbError(err, "查询书评失败")
	}

	out := make([]*review.Review, len(models))
	for i, m := range models {
		out[i] = &review.Review{
			ID:        m.ID,
			BookID:    m.BookID,
			Writer:    m.Writer,
			Body:      m.Body,
			Stars:     m.Stars,
			WrittenAt: m.WrittenAt,
			CreatedAt: m.CreatedAt,
		}
	}
	return out, nil
}
