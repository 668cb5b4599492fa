package catalog

import (
	"context"
	"strconv"
	"time"

	"github.com/xiebiao/library-catalog/internal/domain/identity"
	"github.com/xiebiao/library-catalog/internal/domain/review"
	"github.com/xiebiao/library-catalog/pkg/metrics"
)

// AddReviewRequest 新增书评
type AddReviewRequest struct {
	BookID    uint
	Writer    string
	Body      string
	Stars     int
	WrittenAt *time.Time
}

// ReviewUseCase 书评用例
type ReviewUseCase struct {
	reviews review.Service
}

func NewReviewUseCase(reviews review.Service) *ReviewUseCase {
	return &ReviewUseCase{reviews: reviews}
}

// Add 需要登录；评分超出区间返回ErrInvalidRating
func (uc *ReviewUseCase) Add(ctx context.Context, actor identity.Identity, req AddReviewRequest) (*ReviewItem, error) {
	in := review.AddInput{
		BookID: req.BookID,
		Writer: req.Writer,
		Body:   req.Body,
		Stars:  req.Stars,
	}
	if req.WrittenAt != nil {
		in.WrittenAt = *req.WrittenAt
	}

	r, err := uc.reviews.AddReview(ctx, actor, in)
	if err != nil {
		return nil, err
	}

	metrics.RecordReview(r.Stars)
	item := toReviewItem(r)
	return &item, nil
}

func (uc *ReviewUseCase) List(ctx context.Context, bookID uint) ([]ReviewItem, error) {
	list, err := uc.reviews.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return ToReviewItems(list), nil
}

func formatRating(avg float64) string {
	return strconv.FormatFloat(avg, 'f', 1, 64)
}
