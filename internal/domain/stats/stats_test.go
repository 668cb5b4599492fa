package stats

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/review"
	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

func copies(statuses ...instance.Status) []*instance.BookInstance {
	out := make([]*instance.BookInstance, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, &instance.BookInstance{BookID: 1, Status: st})
	}
	return out
}

func reviewsWith(stars ...int) []*review.Review {
	out := make([]*review.Review, 0, len(stars))
	for _, s := range stars {
		out = append(out, &review.Review{BookID: 1, Stars: s})
	}
	return out
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name  string
		stars []int
		want  float64
	}{
		{name: "没有书评", stars: nil, want: NoRating},
		{name: "3,4,5", stars: []int{3, 4, 5}, want: 4.0},
		{name: "单条", stars: []int{2}, want: 2.0},
		{name: "非整数", stars: []int{1, 2}, want: 1.5},
		{name: "全0", stars: []int{0, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AverageRating(reviewsWith(tt.stars...))
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCopyCounts(t *testing.T) {
	list := copies(instance.StatusAvailable, instance.StatusCheckedOut, instance.StatusAvailable, instance.StatusUnavailable)

	assert.True(t, HasAvailableCopy(list))
	assert.Equal(t, 2, AvailableCopyCount(list))
	assert.Equal(t, 4, TotalCopyCount(list))
	assert.LessOrEqual(t, AvailableCopyCount(list), TotalCopyCount(list))

	byStatus := CountByStatus(list)
	assert.Equal(t, 0, byStatus[instance.StatusReserved])
	assert.Equal(t, 1, byStatus[instance.StatusCheckedOut])

	none := copies(instance.StatusReserved)
	assert.False(t, HasAvailableCopy(none))
	assert.Equal(t, 0, AvailableCopyCount(nil))
	assert.Equal(t, 0, TotalCopyCount(nil))
}

type fakeInstances []*instance.BookInstance

func (f fakeInstances) ListByBook(_ context.Context, _ uint) ([]*instance.BookInstance, error) {
	return f, nil
}

type fakeReviews []*review.Review

func (f fakeReviews) ListByBook(_ context.Context, _ uint) ([]*review.Review, error) {
	return f, nil
}

type fakeSummary struct{}

func (fakeSummary) Summary(_ context.Context) (*Summary, error) {
	return &Summary{Books: 3, Instances: 5, AvailableInstances: 2, Authors: 1}, nil
}

type fakeBooks map[uint]bool

func (f fakeBooks) Exists(_ context.Context, id uint) (bool, error) {
	return f[id], nil
}

func TestService(t *testing.T) {
	svc := NewService(
		fakeBooks{1: true},
		fakeInstances(copies(instance.StatusAvailable, instance.StatusReserved)),
		fakeReviews(reviewsWith(3, 4, 5)),
		fakeSummary{},
	)
	ctx := context.Background()

	bs, err := svc.ForBook(ctx, 1)
	require.NoError(t, err)
	assert.True(t, bs.HasAvailable)
	assert.Equal(t, 1, bs.Available)
	assert.Equal(t, 2, bs.Total)
	assert.Equal(t, 3, bs.ReviewCount)
	assert.InDelta(t, 4.0, bs.AverageRating, 1e-9)
	assert.Len(t, bs.Instances, 2)
	assert.Len(t, bs.Reviews, 3)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.AvailableInstances)
}

func TestService_ForBookMissing(t *testing.T) {
	svc := NewService(fakeBooks{}, fakeInstances(nil), fakeReviews(nil), fakeSummary{})

	_, err := svc.ForBook(context.Background(), 424242)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}
