package catalog

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xiebiao/library-catalog/pkg/validator"
)

// DefaultGenreDisplayLimit 列表页展示的类型数量
const DefaultGenreDisplayLimit = 3

// Author 作者实体
// 排序键：(LastName, FirstName)
type Author struct {
	ID          uint
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	DateOfDeath *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAuthor 创建作者(工厂方法)
func NewAuthor(firstName, lastName string, born, died *time.Time) (*Author, error) {
	a := &Author{CreatedAt: time.Now()}
	if err := a.Update(firstName, lastName, born, died); err != nil {
		return nil, err
	}
	a.UpdatedAt = a.CreatedAt
	return a, nil
}

// Update 整体更新作者信息
func (a *Author) Update(firstName, lastName string, born, died *time.Time) error {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" || utf8.RuneCountInString(firstName) > 100 || utf8.RuneCountInString(lastName) > 200 {
		return ErrInvalidAuthorName
	}
	if born != nil && died != nil && died.Before(*born) {
		return ErrInvalidLifespan
	}
	a.FirstName = firstName
	a.LastName = lastName
	a.DateOfBirth = born
	a.DateOfDeath = died
	a.UpdatedAt = time.Now()
	return nil
}

// FullName "姓, 名"形式
func (a *Author) FullName() string {
	return a.LastName + ", " + a.FirstName
}

// Genre 图书类型
type Genre struct {
	ID        uint
	Name      string
	CreatedAt time.Time
}

// NewGenre 创建类型
func NewGenre(name string) (*Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 200 {
		return nil, ErrInvalidGenreName
	}
	return &Genre{Name: name, CreatedAt: time.Now()}, nil
}

// Rename 修改类型名称
func (g *Genre) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 200 {
		return ErrInvalidGenreName
	}
	g.Name = name
	return nil
}

// Book 图书实体(聚合根)
// 1. ISBN为13位数字，全局唯一
// 2. AuthorID可为空（作者被删除时置空）
// 3. Genres为多对多关联，GenreIDs是写入时使用的关联ID
type Book struct {
	ID          uint
	Title       string
	ISBN        string
	Description string
	CoverImage  string // 封面图片引用(URL或存储key)
	PublishedOn *time.Time
	AuthorID    *uint
	GenreIDs    []uint
	Genres      []Genre // 读取时由仓储填充
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookInput 创建/更新图书的字段
type BookInput struct {
	Title       string
	ISBN        string
	Description string
	CoverImage  string
	PublishedOn *time.Time
	AuthorID    *uint
	GenreIDs    []uint
}

// NewBook 创建图书(工厂方法)
func NewBook(in BookInput) (*Book, error) {
	b := &Book{CreatedAt: time.Now()}
	if err := b.Apply(in); err != nil {
		return nil, err
	}
	b.UpdatedAt = b.CreatedAt
	return b, nil
}

// Apply 校验并写入字段，ISBN会被规范化为纯数字
func (b *Book) Apply(in BookInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > 200 {
		return ErrInvalidTitle
	}
	if !validator.IsISBN13(in.ISBN) {
		return ErrInvalidISBN
	}
	if utf8.RuneCountInString(in.Description) > 1000 {
		return ErrDescriptionTooLong
	}

	b.Title = title
	b.ISBN = validator.NormalizeISBN(in.ISBN)
	b.Description = in.Description
	b.CoverImage = strings.TrimSpace(in.CoverImage)
	b.PublishedOn = in.PublishedOn
	b.AuthorID = in.AuthorID
	b.GenreIDs = uniqueIDs(in.GenreIDs)
	b.UpdatedAt = time.Now()
	return nil
}

// DisplayGenres 取前limit个类型名，逗号连接
// 类型按名称字母序排列，保证同一本书每次展示一致
func DisplayGenres(b *Book, limit int) string {
	if limit <= 0 {
		limit = DefaultGenreDisplayLimit
	}
	names := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		names = append(names, g.Name)
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return strings.Join(names, ", ")
}

// uniqueIDs 去重并保持顺序
func uniqueIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
