package book

import (
	"errors"
	"time"

	"bookfeed/internal/normalize"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrInvalid wraps validation failures on manual writes.
	ErrInvalid = errors.New("invalid book")
)

// Book is one catalog record. ISBN is the identity key.
type Book struct {
	ID                  string         `json:"id"`
	ISBN                string         `json:"isbn"`
	Title               string         `json:"title"`
	Subtitle            string         `json:"subtitle,omitempty"`
	Authors             []string       `json:"authors"`
	Publisher           string         `json:"publisher,omitempty"`
	PublishedDate       normalize.Date `json:"publishedDate"`
	PageCount           *int           `json:"pagecount,omitempty"`
	Genres              []string       `json:"genres"`
	MainGenre           string         `json:"mainGenre"`
	Description         string         `json:"description"`
	CoverImage          string         `json:"coverImage"`
	Themes              []string       `json:"themes"`
	WritingStyle        []string       `json:"writingStyle"`
	Tone                []string       `json:"tone"`
	Keywords            []string       `json:"keywords,omitempty"`
	AmazonAffiliateLink string         `json:"amazonAffiliateLink"`
	FavoriteCount       int            `json:"favoriteCount"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// Summary is the short form reported by ingestion sweeps.
type Summary struct {
	Title   string   `json:"title"`
	ISBN    string   `json:"isbn"`
	Authors []string `json:"authors"`
}

func (b *Book) Summary() Summary {
	return Summary{Title: b.Title, ISBN: b.ISBN, Authors: b.Authors}
}

// Query defines filters and pagination for listing books. Results are
// ordered by ISBN; AfterISBN continues from a cursor.
type Query struct {
	Genre     string
	AfterISBN string
	Limit     int
	Offset    int
}

// sameAuthors reports whether two author lists are identical, order included.
func sameAuthors(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasGenre(b *Book, genre string) bool {
	for _, g := range b.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
