package dto

import (
	"time"

	apperrors "github.com/xiebiao/library-catalog/pkg/errors"
)

// DateLayout 日期字段统一使用YYYY-MM-DD
const DateLayout = "2006-01-02"

// PageQuery 列表查询参数
type PageQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Keyword  string `form:"keyword" binding:"max=100"`
}

// BookRequest 创建/更新图书
// genre_ids整体替换原有类型
type BookRequest struct {
	Title       string  `json:"title" binding:"required,max=200" example:"Pride and Prejudice"`
	ISBN        string  `json:"isbn" binding:"required,isbn13" example:"9780141439518"`
	Description string  `json:"description" binding:"max=1000"`
	CoverImage  string  `json:"cover_image" binding:"omitempty,max=500"`
	PublishedOn *string `json:"published_on" example:"1813-01-28"`
	AuthorID    *uint   `json:"author_id"`
	GenreIDs    []uint  `json:"genre_ids"`
}

// AuthorRequest 创建/更新作者
type AuthorRequest struct {
	FirstName   string  `json:"first_name" binding:"required,max=100" example:"Jane"`
	LastName    string  `json:"last_name" binding:"required,max=200" example:"Austen"`
	DateOfBirth *string `json:"date_of_birth" example:"1775-12-16"`
	DateOfDeath *string `json:"date_of_death" example:"1817-07-18"`
}

// GenreRequest 创建类型
type GenreRequest struct {
	Name string `json:"name" binding:"required,max=200" example:"Romance"`
}

// ReviewRequest 新增书评
type ReviewRequest struct {
	Writer    string  `json:"writer" binding:"required,max=200"`
	Body      string  `json:"body" binding:"max=2000"`
	Stars     *int    `json:"stars" binding:"required"`
	WrittenAt *string `json:"written_at" example:"2024-01-15"`
}

// ParseDate 解析可选日期，nil或空串返回nil
func ParseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, *s, time.Local)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, field+"日期格式应为YYYY-MM-DD")
	}
	return &t, nil
}
