package review

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Rating 星级允许的闭区间
type Rating struct {
	Min int
	Max int
}

// DefaultRating 0到5星
func DefaultRating() Rating {
	return Rating{Min: 0, Max: 5}
}

// Contains 星级是否在区间内，负数一律不接受
func (r Rating) Contains(stars int) bool {
	return stars >= 0 && stars >= r.Min && stars <= r.Max
}

// Review 书评实体
// 只追加，不提供编辑和删除；按WrittenAt升序展示
type Review struct {
	ID        uint
	BookID    uint
	Writer    string
	Body      string
	Stars     int
	WrittenAt time.Time
	CreatedAt time.Time
}

// NewReview 创建书评(工厂方法)，writtenAt为零值时取当前时间
func NewReview(bookID uint, writer, body string, stars int, writtenAt time.Time, rating Rating) (*Review, error) {
	writer = strings.TrimSpace(writer)
	if writer == "" || utf8.RuneCountInString(writer) > 200 {
		return nil, ErrInvalidWriter
	}
	if utf8.RuneCountInString(body) > 2000 {
		return nil, ErrBodyTooLong
	}
	if !rating.Contains(stars) {
		return nil, ErrInvalidRating
	}

	now := time.Now()
	if writtenAt.IsZero() {
		writtenAt = now
	}
	return &Review{
		BookID:    bookID,
		Writer:    writer,
		Body:      body,
		Stars:     stars,
		WrittenAt: writtenAt,
		CreatedAt: now,
	}, nil
}
