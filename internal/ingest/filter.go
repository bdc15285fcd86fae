package ingest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"bookfeed/internal/book"
	"bookfeed/internal/nlp"
	"bookfeed/internal/normalize"
	"bookfeed/internal/platform/googlebooks"
)

// MaxTitleLength is measured in runes.
const MaxTitleLength = 45

const placeholderAuthor = "To Be Announced"

// Rejection explains why a volume was not turned into a book record.
type Rejection string

const (
	RejectMissingVolumeInfo Rejection = "missing volume info"
	RejectTitle             Rejection = "missing title or title too long"
	RejectAuthors           Rejection = "invalid authors"
	RejectMissingDate       Rejection = "missing published date"
	RejectNoContent         Rejection = "missing category and description"
	RejectNoImage           Rejection = "missing image"
	RejectInvalidDate       Rejection = "invalid published date"
)

var (
	tripleStarSpan = regexp.MustCompile(`\*\*\*.*?\*\*\*`)
	doubleStarSpan = regexp.MustCompile(`\*\*.*?\*\*`)
	leadingCaps    = regexp.MustCompile(`^[A-Z\s]+\b`)
)

// Filter validates raw volumes and builds normalized, attributed book records.
type Filter struct {
	engine *nlp.Engine
}

func NewFilter(engine *nlp.Engine) *Filter {
	return &Filter{engine: engine}
}

// Apply runs the validation gates in order and returns the first failing one.
// On success the record carries inferred genres, derived attributes and the
// first ISBN-13 of the volume, which may be empty.
func (f *Filter) Apply(v googlebooks.Volume) (*book.Book, Rejection) {
	info := v.VolumeInfo
	if info == nil {
		return nil, RejectMissingVolumeInfo
	}
	if info.Title == "" || utf8.RuneCountInString(info.Title) > MaxTitleLength {
		return nil, RejectTitle
	}
	if len(info.Authors) == 0 {
		return nil, RejectAuthors
	}
	for _, a := range info.Authors {
		if a == placeholderAuthor {
			return nil, RejectAuthors
		}
	}
	if info.PublishedDate == "" {
		return nil, RejectMissingDate
	}
	if len(info.Categories) == 0 && info.Description == "" {
		return nil, RejectNoContent
	}
	if info.ImageLinks.Thumbnail == "" {
		return nil, RejectNoImage
	}
	published, ok := normalize.ParseDate(info.PublishedDate)
	if !ok {
		return nil, RejectInvalidDate
	}

	authors := make([]string, 0, len(info.Authors))
	for _, a := range info.Authors {
		authors = append(authors, normalize.Name(a))
	}
	description := CleanDescription(info.Description)

	genres := f.engine.InferGenres(nlp.GenreInput{
		Description: description,
		Categories:  info.Categories,
		Title:       info.Title,
		Subtitle:    info.Subtitle,
		Authors:     authors,
	})

	b := &book.Book{
		Title:         info.Title,
		Subtitle:      info.Subtitle,
		Authors:       authors,
		Publisher:     info.Publisher,
		PublishedDate: published,
		Genres:        genres,
		MainGenre:     nlp.UnknownGenre,
		Description:   description,
		CoverImage:    forceHTTPS(info.ImageLinks.Thumbnail),
	}
	if info.PageCount > 0 {
		n := info.PageCount
		b.PageCount = &n
	}
	if len(genres) > 0 {
		b.MainGenre = genres[0]
	}
	if attrs, ok := f.engine.AssignAttributes(b.MainGenre, b.Description); ok {
		b.Themes = attrs.Themes
		b.WritingStyle = attrs.WritingStyle
		b.Tone = attrs.Tone
	}
	b.ISBN = info.ISBN13()
	return b, ""
}

// CleanDescription strips markup, promotional ***…*** and **…** spans and a
// leading all-caps run, then capitalizes the first letter.
func CleanDescription(s string) string {
	if strings.ContainsRune(s, '<') {
		s = stripMarkup(s)
	}
	s = strings.TrimSpace(tripleStarSpan.ReplaceAllString(s, ""))
	s = strings.TrimSpace(doubleStarSpan.ReplaceAllString(s, ""))
	s = strings.TrimSpace(leadingCaps.ReplaceAllString(s, ""))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsUpper(r) {
		s = string(unicode.ToUpper(r)) + s[size:]
	}
	return s
}

func stripMarkup(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "br", "div", "li":
				buf.WriteString(" ")
			}
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func forceHTTPS(u string) string {
	if strings.HasPrefix(u, "http:") {
		return "https:" + strings.TrimPrefix(u, "http:")
	}
	return u
}
