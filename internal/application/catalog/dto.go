package catalog

import (
	"time"

	"github.com/xiebiao/library-catalog/internal/domain/catalog"
)

const dateLayout = "2006-01-02"

// BookItem 图书列表项(不含描述)
type BookItem struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	ISBN     string `json:"isbn"`
	AuthorID *uint  `json:"author_id"`
	Genres   string `json:"genres"`
}

// AuthorItem 作者
type AuthorItem struct {
	ID          uint    `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	FullName    string  `json:"full_name"`
	DateOfBirth *string `json:"date_of_birth"`
	DateOfDeath *string `json:"date_of_death"`
}

// GenreItem 类型
type GenreItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BookInfo 图书完整信息
type BookInfo struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	ISBN        string      `json:"isbn"`
	Description string      `json:"description"`
	CoverImage  string      `json:"cover_image"`
	PublishedOn *string     `json:"published_on"`
	Author      *AuthorItem `json:"author"`
	Genres      []GenreItem `json:"genres"`
	GenreLine   string      `json:"genre_line"`
}

func toBookItem(b *catalog.Book, genreLimit int) BookItem {
	return BookItem{
		ID:       b.ID,
		Title:    b.Title,
		ISBN:     b.ISBN,
		AuthorID: b.AuthorID,
		Genres:   catalog.DisplayGenres(b, genreLimit),
	}
}

func toAuthorItem(a *catalog.Author) AuthorItem {
	return AuthorItem{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		FullName:    a.FullName(),
		DateOfBirth: formatDate(a.DateOfBirth),
		DateOfDeath: formatDate(a.DateOfDeath),
	}
}

func toGenreItem(g *catalog.Genre) GenreItem {
	return GenreItem{ID: g.ID, Name: g.Name}
}

func toBookInfo(b *catalog.Book, author *catalog.Author, genreLimit int) BookInfo {
	info := BookInfo{
		ID:          b.ID,
		Title:       b.Title,
		ISBN:        b.ISBN,
		Description: b.Description,
		CoverImage:  b.CoverImage,
		PublishedOn: formatDate(b.PublishedOn),
		Genres:      make([]GenreItem, len(b.Genres)),
		GenreLine:   catalog.DisplayGenres(b, genreLimit),
	}
	for i := range b.Genres {
		info.Genres[i] = toGenreItem(&b.Genres[i])
	}
	if author != nil {
		item := toAuthorItem(author)
		info.Author = &item
	}
	return info
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
