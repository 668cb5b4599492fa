package catalog

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library-catalog/internal/domain/stats"
)

// VisitCounter 会话访问计数(redis.VisitStore满足此接口)
type VisitCounter interface {
	Incr(ctx context.Context, sid string) (int64, error)
}

// SummaryResponse 首页统计
type SummaryResponse struct {
	NumBooks              int64 `json:"num_books"`
	NumInstances          int64 `json:"num_instances"`
	NumInstancesAvailable int64 `json:"num_instances_available"`
	NumAuthors            int64 `json:"num_authors"`
	NumGenres             int64 `json:"num_genres"`
	NumVisits             int64 `json:"num_visits"`
}

// SummaryUseCase 首页统计用例
// 访问计数属于会话层面的数据，计数失败只记日志，不影响统计结果
type SummaryUseCase struct {
	stats  *stats.Service
	visits VisitCounter
}

// NewSummaryUseCase visits为nil时不计数
func NewSummaryUseCase(statsSvc *stats.Service, visits VisitCounter) *SummaryUseCase {
	return &SummaryUseCase{stats: statsSvc, visits: visits}
}

// Execute sid为空时NumVisits为0
func (uc *SummaryUseCase) Execute(ctx context.Context, sid string) (*SummaryResponse, error) {
	s, err := uc.stats.Summary(ctx)
	if err != nil {
		return nil, err
	}

	resp := &SummaryResponse{
		NumBooks:              s.Books,
		NumInstances:          s.Instances,
		NumInstancesAvailable: s.AvailableInstances,
		NumAuthors:            s.Authors,
		NumGenres:             s.Genres,
	}

	if uc.visits != nil && sid != "" {
		n, err := uc.visits.Incr(ctx, sid)
		if err != nil {
			slog.WarnContext(ctx, "访问计数失败", "error", err)
		}
		resp.NumVisits = n
	}
	return resp, nil
}
