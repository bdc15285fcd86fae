package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bookfeed/internal/nlp"
	"bookfeed/internal/normalize"
)

// Service provides book-related business logic.
type Service struct {
	repo   Repository
	engine *nlp.Engine
	logger *zerolog.Logger
}

// NewService creates a new book service.
func NewService(repo Repository, engine *nlp.Engine, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{repo: repo, engine: engine, logger: logger}
}

// List returns a list of books matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

// GetByISBN returns a book by its ISBN.
func (s *Service) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	return s.repo.GetByISBN(ctx, isbn)
}

func (s *Service) Delete(ctx context.Context, isbn string) error {
	return s.repo.Delete(ctx, isbn)
}

// PublishedBefore lists books whose publication date is strictly before cutoff.
func (s *Service) PublishedBefore(ctx context.Context, cutoff time.Time) ([]Book, error) {
	return s.repo.ListPublishedBefore(ctx, cutoff)
}

// Exists reports whether a book with this title and author list is stored.
func (s *Service) Exists(ctx context.Context, title string, authors []string) (bool, error) {
	return s.repo.ExistsByTitleAuthors(ctx, title, authors)
}

// Save upserts b by ISBN. The stored favoriteCount of an existing record is
// carried over; a new record starts at zero.
func (s *Service) Save(ctx context.Context, b *Book) error {
	if b.ISBN == "" {
		return fmt.Errorf("%w: isbn is required", ErrInvalid)
	}
	existing, err := s.repo.GetByISBN(ctx, b.ISBN)
	switch {
	case err == nil:
		b.FavoriteCount = existing.FavoriteCount
	case errors.Is(err, ErrNotFound):
		b.FavoriteCount = 0
	default:
		return fmt.Errorf("lookup isbn %s: %w", b.ISBN, err)
	}
	if len(b.Genres) > 0 && b.MainGenre == "" {
		b.MainGenre = b.Genres[0]
	}
	if err := s.repo.Upsert(ctx, b); err != nil {
		return fmt.Errorf("upsert isbn %s: %w", b.ISBN, err)
	}
	return nil
}

// AddInput is a manual book submission. ISBN and Description are required;
// every other field overrides what would otherwise be left empty.
type AddInput struct {
	ISBN                string   `json:"isbn"`
	Description         string   `json:"description"`
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	Authors             []string `json:"authors"`
	Genres              []string `json:"genres"`
	MainGenre           string   `json:"mainGenre"`
	AmazonAffiliateLink string   `json:"amazonAffiliateLink"`
	PageCount           *int     `json:"pagecount"`
	PublishedDate       string   `json:"publishedDate"`
	Publisher           string   `json:"publisher"`
	CoverImage          string   `json:"coverImage"`
}

// Add builds a record from a manual submission, derives its themes, writing
// styles and tone from the description, and upserts it by ISBN. Genres are
// inferred when the submission names none.
func (s *Service) Add(ctx context.Context, in AddInput) (Book, error) {
	isbn := strings.TrimSpace(in.ISBN)
	if isbn == "" {
		return Book{}, fmt.Errorf("%w: isbn is required", ErrInvalid)
	}
	if strings.TrimSpace(in.Description) == "" {
		return Book{}, fmt.Errorf("%w: description is required", ErrInvalid)
	}

	b := Book{
		ISBN:                isbn,
		Title:               in.Title,
		Subtitle:            in.Subtitle,
		Publisher:           in.Publisher,
		PageCount:           in.PageCount,
		Description:         in.Description,
		CoverImage:          in.CoverImage,
		AmazonAffiliateLink: in.AmazonAffiliateLink,
		Genres:              in.Genres,
		MainGenre:           in.MainGenre,
	}
	for _, a := range in.Authors {
		if n := normalize.Name(a); n != "" {
			b.Authors = append(b.Authors, n)
		}
	}
	if in.PublishedDate != "" {
		d, err := parseSubmittedDate(in.PublishedDate)
		if err != nil {
			return Book{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		b.PublishedDate = d
	}

	if len(b.Genres) == 0 && s.engine != nil {
		b.Genres = s.engine.InferGenres(nlp.GenreInput{
			Description: b.Description,
			Title:       b.Title,
			Subtitle:    b.Subtitle,
			Authors:     b.Authors,
		})
	}
	if b.MainGenre == "" && len(b.Genres) > 0 {
		b.MainGenre = b.Genres[0]
	}
	if s.engine != nil {
		if attrs, ok := s.engine.AssignAttributes(b.MainGenre, b.Description); ok {
			b.Themes = attrs.Themes
			b.WritingStyle = attrs.WritingStyle
			b.Tone = attrs.Tone
		}
	}

	if err := s.Save(ctx, &b); err != nil {
		return Book{}, err
	}
	s.logger.Info().Str("isbn", b.ISBN).Str("main_genre", b.MainGenre).Msg("book added")
	return b, nil
}

func parseSubmittedDate(s string) (normalize.Date, error) {
	if d, ok := normalize.ParseDate(s); ok {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return normalize.DateFromTime(t), nil
	}
	return normalize.Date{}, fmt.Errorf("unsupported publishedDate %q", s)
}
