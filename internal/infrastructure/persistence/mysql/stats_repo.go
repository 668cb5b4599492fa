package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/stats"
)

type statsRepository struct {
	base
}

// NewStatsRepository 首页统计
func NewStatsRepository(db *gorm.DB) stats.SummaryRepository {
	return &statsRepository{base{db: db}}
}

// Summary 每次实时COUNT，不做缓存
func (r *statsRepository) Summary(ctx context.Context) (*stats.Summary, error) {
	db := r.getDB(ctx)
	var (
		s   stats.Summary
		err error
	)
	if s.Books, err = count[BookModel](db, nil); err != nil {
		return nil, err
	}
	if s.Instances, err = count[BookInstanceModel](db, nil); err != nil {
		return nil, err
	}
	if s.AvailableInstances, err = count[BookInstanceModel](db, "status = ?", string(instance.StatusAvailable)); err != nil {
		return nil, err
	}
	if s.Authors, err = count[AuthorModel](db, nil); err != nil {
		return nil, err
	}
	if s.Genres, err = count[GenreModel](db, nil); err != nil {
		return nil, err
	}
	return &s, nil
}
