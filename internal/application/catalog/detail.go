package catalog

import (
	"context"
	"time"

	"github.com/xiebiao/library-catalog/internal/application/loan"
	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/review"
	"github.com/xiebiao/library-catalog/internal/domain/stats"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// NoReviewsText 没有书评时平均分的展示文本
const NoReviewsText = "no reviews"

// ReviewItem 书评
type ReviewItem struct {
	ID        uint   `json:"id"`
	Writer    string `json:"writer"`
	Body      string `json:"body"`
	Stars     int    `json:"stars"`
	WrittenAt string `json:"written_at"`
}

// BookDetail 图书详情页
type BookDetail struct {
	Book           BookInfo            `json:"book"`
	Instances      []loan.InstanceItem `json:"instances"`
	Reviews        []ReviewItem        `json:"reviews"`
	HasAvailable   bool                `json:"has_available"`
	AvailableCount int                 `json:"available_count"`
	TotalCount     int                 `json:"total_count"`
	ByStatus       map[string]int      `json:"by_status"`
	AverageRating  *float64            `json:"average_rating"` // 无书评时为null
	RatingText     string              `json:"rating_text"`
}

// BookDetailUseCase 图书详情用例
// 设计说明:
// 1. 聚合图书、作者、副本、书评四类数据
// 2. 作者已被删除时Author为null，不视为错误
// 3. 副本与书评只读取一次，统计数据在内存中计算
type BookDetailUseCase struct {
	catalog    catalog.Service
	stats      *stats.Service
	genreLimit int
}

func NewBookDetailUseCase(catalogSvc catalog.Service, statsSvc *stats.Service, genreLimit int) *BookDetailUseCase {
	return &BookDetailUseCase{
		catalog:    catalogSvc,
		stats:      statsSvc,
		genreLimit: genreLimit,
	}
}

func (uc *BookDetailUseCase) Execute(ctx context.Context, bookID uint) (*BookDetail, error) {
	book, err := uc.catalog.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var author *catalog.Author
	if book.AuthorID != nil {
		author, err = uc.catalog.GetAuthor(ctx, *book.AuthorID)
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
	}

	st, err := uc.stats.ForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	detail := &BookDetail{
		Book:           toBookInfo(book, author, uc.genreLimit),
		Instances:      loan.ToInstanceItems(st.Instances),
		Reviews:        ToReviewItems(st.Reviews),
		HasAvailable:   st.HasAvailable,
		AvailableCount: st.Available,
		TotalCount:     st.Total,
		ByStatus:       make(map[string]int, len(st.ByStatus)),
		RatingText:     RatingText(st.AverageRating),
	}
	for s, n := range st.ByStatus {
		detail.ByStatus[string(s)] = n
	}
	if st.AverageRating != stats.NoRating {
		avg := st.AverageRating
		detail.AverageRating = &avg
	}
	return detail, nil
}

// RatingText 平均分展示，保留一位小数
func RatingText(avg float64) string {
	if avg == stats.NoRating {
		return NoReviewsText
	}
	return formatRating(avg)
}

// ToReviewItems 领域实体 → DTO
func ToReviewItems(list []*review.Review) []ReviewItem {
	out := make([]ReviewItem, len(list))
	for i, r := range list {
		out[i] = toReviewItem(r)
	}
	return out
}

func toReviewItem(r *review.Review) ReviewItem {
	return ReviewItem{
		ID:        r.ID,
		Writer:    r.Writer,
		Body:      r.Body,
		Stars:     r.Stars,
		WrittenAt: r.WrittenAt.Format(time.DateOnly),
	}
}
