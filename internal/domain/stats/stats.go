package stats

import (
	"github.com/xiebiao/library-catalog/internal/domain/instance"
	"github.com/xiebiao/library-catalog/internal/domain/review"
)

// NoRating 没有书评时AverageRating的返回值
// 这是正常状态，不是错误
const NoRating = -1.0

// HasAvailableCopy 是否存在可借副本
func HasAvailableCopy(instances []*instance.BookInstance) bool {
	for _, inst := range instances {
		if inst.Status == instance.StatusAvailable {
			return true
		}
	}
	return false
}

// AvailableCopyCount 可借副本数
func AvailableCopyCount(instances []*instance.BookInstance) int {
	n := 0
	for _, inst := range instances {
		if inst.Status == instance.StatusAvailable {
			n++
		}
	}
	return n
}

// TotalCopyCount 副本总数，不区分状态
func TotalCopyCount(instances []*instance.BookInstance) int {
	return len(instances)
}

// CountByStatus 按状态分组计数，未出现的状态计0
func CountByStatus(instances []*instance.BookInstance) map[instance.Status]int {
	out := make(map[instance.Status]int, 4)
	for _, st := range instance.AllStatuses() {
		out[st] = 0
	}
	for _, inst := range instances {
		out[inst.Status]++
	}
	return out
}

// AverageRating 星级算术平均，没有书评返回NoRating
func AverageRating(reviews []*review.Review) float64 {
	if len(reviews) == 0 {
		return NoRating
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Stars
	}
	return float64(sum) / float64(len(reviews))
}

// BookStats 单本图书的聚合视图
type BookStats struct {
	BookID        uint
	HasAvailable  bool
	Available     int
	Total         int
	ByStatus      map[instance.Status]int
	AverageRating float64
	ReviewCount   int

	Instances []*instance.BookInstance
	Reviews   []*review.Review
}

// Compute 由副本和书评计算聚合视图
func Compute(bookID uint, instances []*instance.BookInstance, reviews []*review.Review) *BookStats {
	return &BookStats{
		BookID:        bookID,
		HasAvailable:  HasAvailableCopy(instances),
		Available:     AvailableCopyCount(instances),
		Total:         TotalCopyCount(instances),
		ByStatus:      CountByStatus(instances),
		AverageRating: AverageRating(reviews),
		ReviewCount:   len(reviews),
		Instances:     instances,
		Reviews:       reviews,
	}
}

// Summary 站点首页统计
type Summary struct {
	Books              int64
	Instances          int64
	AvailableInstances int64
	Authors            int64
	Genres             int64
}
