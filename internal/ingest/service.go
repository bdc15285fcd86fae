package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bookfeed/internal/author"
	"bookfeed/internal/book"
	"bookfeed/internal/nlp"
	"bookfeed/internal/normalize"
	"bookfeed/internal/platform/amazon"
	"bookfeed/internal/platform/googlebooks"
)

const (
	// PageSize is the largest page the book search source serves.
	PageSize = googlebooks.MaxPageSize

	unreleasedMaxIndex    = 40
	unreleasedMaxAttempts = 5
)

type Config struct {
	// PageDelay is slept after every fetched page.
	PageDelay time.Duration
	// CustomQueryCap stops a custom-query sweep after this many upserts.
	CustomQueryCap int
	// MaxQueryPages bounds a custom-query sweep that never reaches the cap.
	MaxQueryPages int
	RetentionDays int
}

func (c *Config) setDefaults() {
	if c.PageDelay < 0 {
		c.PageDelay = 0
	}
	if c.CustomQueryCap <= 0 {
		c.CustomQueryCap = 200
	}
	if c.MaxQueryPages <= 0 {
		c.MaxQueryPages = 25
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = 30
	}
}

// SweepResult lists the books a sweep accepted and persisted.
type SweepResult struct {
	RunID string         `json:"run_id"`
	Count int            `json:"count"`
	Books []book.Summary `json:"result"`
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSleeper replaces the context-aware delay between pages.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Service) { s.sleep = sleep }
}

type Service struct {
	search   VolumeSearcher
	commerce CommerceLookup
	books    BookStore
	authors  AuthorEnricher
	runs     Repository
	engine   *nlp.Engine
	filter   *Filter
	cfg      Config
	logger   *zerolog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewService(search VolumeSearcher, commerce CommerceLookup, books BookStore, authors AuthorEnricher, runs Repository, engine *nlp.Engine, cfg Config, logger *zerolog.Logger, opts ...Option) *Service {
	cfg.setDefaults()
	if runs == nil {
		runs = NewMemoryRepo()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Service{
		search:   search,
		commerce: commerce,
		books:    books,
		authors:  authors,
		runs:     runs,
		engine:   engine,
		filter:   NewFilter(engine),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepUnreleased searches "<keyword> <current year>" for every keyword of
// genre and persists the upcoming English titles that pass every gate.
func (s *Service) SweepUnreleased(ctx context.Context, genre string) (SweepResult, error) {
	g, ok := s.engine.Taxonomy().Genre(genre)
	if !ok {
		return SweepResult{}, fmt.Errorf("%w: %q", ErrUnknownGenre, genre)
	}

	run := s.startRun(ctx, KindUnreleasedByGenre, g.Name)
	res := SweepResult{RunID: run.ID}
	log := s.logger.With().Str("run_id", run.ID).Str("genre", g.Name).Logger()
	log.Info().Msg("processing genre")

	year := s.now().Year()
	var err error
keywords:
	for _, kw := range g.Keywords {
		q := fmt.Sprintf("%s %d", kw, year)
		for start, attempt := 0, 0; start < unreleasedMaxIndex && attempt < unreleasedMaxAttempts; start, attempt = start+PageSize, attempt+1 {
			if err = ctx.Err(); err != nil {
				break keywords
			}
			page, ferr := s.search.SearchVolumes(ctx, q, start, PageSize)
			if ferr != nil {
				log.Error().Err(ferr).Str("query", q).Int("start_index", start).Msg("book search failed")
				break
			}
			if len(page.Items) == 0 {
				break
			}
			s.processPage(ctx, page.Items, run, &res, 0, log)
			if err = s.sleep(ctx, s.cfg.PageDelay); err != nil {
				break keywords
			}
		}
	}

	s.finishRun(ctx, run, err)
	log.Info().Int("count", res.Count).Msg("unreleased sweep finished")
	return res, err
}

// SweepQuery pages through a free-text search until CustomQueryCap books are
// persisted, a page comes back empty or fails, or MaxQueryPages is reached.
func (s *Service) SweepQuery(ctx context.Context, query string) (SweepResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SweepResult{}, ErrEmptyQuery
	}

	run := s.startRun(ctx, KindCustomQuery, query)
	res := SweepResult{RunID: run.ID}
	log := s.logger.With().Str("run_id", run.ID).Str("query", query).Logger()

	var err error
	for page := 0; page < s.cfg.MaxQueryPages && res.Count < s.cfg.CustomQueryCap; page++ {
		if err = ctx.Err(); err != nil {
			break
		}
		start := page * PageSize
		p, ferr := s.search.SearchVolumes(ctx, query, start, PageSize)
		if ferr != nil {
			log.Error().Err(ferr).Int("start_index", start).Msg("book search failed")
			break
		}
		if len(p.Items) == 0 {
			break
		}
		s.processPage(ctx, p.Items, run, &res, s.cfg.CustomQueryCap, log)
		if res.Count >= s.cfg.CustomQueryCap {
			break
		}
		if err = s.sleep(ctx, s.cfg.PageDelay); err != nil {
			break
		}
	}

	s.finishRun(ctx, run, err)
	log.Info().Int("count", res.Count).Msg("custom query sweep finished")
	return res, err
}

// processPage runs every volume through the gates. A positive limit stops
// the page once res holds that many books.
func (s *Service) processPage(ctx context.Context, items []googlebooks.Volume, run *Run, res *SweepResult, limit int, log zerolog.Logger) {
	for _, v := range items {
		if limit > 0 && res.Count >= limit {
			return
		}
		if ctx.Err() != nil {
			return
		}
		run.BooksScanned++
		b, ok := s.accept(ctx, v, log)
		if !ok {
			continue
		}
		run.BooksUpserted++
		res.Count++
		res.Books = append(res.Books, b.Summary())
	}
}

// accept applies the gates to one volume and persists it. Every failure is
// logged and reported as false.
func (s *Service) accept(ctx context.Context, v googlebooks.Volume, log zerolog.Logger) (*book.Book, bool) {
	info := v.VolumeInfo
	if info == nil {
		log.Debug().Str("volume_id", v.ID).Msg("skipping volume without info")
		return nil, false
	}
	if info.Language != "en" {
		log.Debug().Str("volume_id", v.ID).Str("language", info.Language).Msg("skipping non-English book")
		return nil, false
	}
	if !s.upcoming(info.PublishedDate) {
		log.Debug().Str("volume_id", v.ID).Str("published_date", info.PublishedDate).Msg("skipping book with old published date")
		return nil, false
	}

	b, reason := s.filter.Apply(v)
	if reason != "" {
		log.Debug().Str("volume_id", v.ID).Str("reason", string(reason)).Msg("book rejected")
		return nil, false
	}
	blog := log.With().Str("isbn", b.ISBN).Str("title", b.Title).Logger()
	if b.ISBN == "" {
		blog.Debug().Msg("skipping book without ISBN-13")
		return nil, false
	}

	exists, err := s.books.Exists(ctx, b.Title, b.Authors)
	if err != nil {
		blog.Error().Err(err).Msg("duplicate check failed")
		return nil, false
	}
	if exists {
		blog.Debug().Msg("book already exists by title and authors")
		return nil, false
	}
	if _, err := s.books.GetByISBN(ctx, b.ISBN); err == nil {
		blog.Debug().Msg("book already exists by ISBN")
		return nil, false
	} else if !errors.Is(err, book.ErrNotFound) {
		blog.Error().Err(err).Msg("ISBN lookup failed")
		return nil, false
	}

	offer, err := s.commerce.SearchByISBN(ctx, b.ISBN)
	if err != nil {
		blog.Error().Err(err).Msg("commerce lookup failed")
		return nil, false
	}
	if offer == nil || offer.AffiliateLink == "" {
		blog.Debug().Msg("no commerce listing with affiliate link")
		return nil, false
	}
	mergeOffer(b, offer)

	if err := s.books.Save(ctx, b); err != nil {
		blog.Error().Err(err).Msg("book upsert failed")
		return nil, false
	}
	blog.Info().Msg("book upserted")
	return b, true
}

// upcoming reports whether raw parses and falls on today or later.
func (s *Service) upcoming(raw string) bool {
	d, ok := normalize.ParseDate(raw)
	if !ok {
		return false
	}
	y, m, dd := s.now().UTC().Date()
	today := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return !d.Before(today)
}

func mergeOffer(b *book.Book, o *amazon.Offer) {
	b.AmazonAffiliateLink = o.AffiliateLink
	if o.CoverImage != "" {
		b.CoverImage = o.CoverImage
	}
	if o.PageCount != nil {
		n := *o.PageCount
		b.PageCount = &n
	}
	if !o.PublishedDate.IsZero() {
		b.PublishedDate = o.PublishedDate
	}
	if o.Publisher != "" {
		b.Publisher = o.Publisher
	}
	if len(o.Keywords) > 0 {
		b.Keywords = append([]string(nil), o.Keywords...)
	}
}

// PruneExpired deletes every book published more than RetentionDays ago,
// one at a time, and returns how many were removed.
func (s *Service) PruneExpired(ctx context.Context) (int, error) {
	run := s.startRun(ctx, KindRetention, fmt.Sprintf("%dd", s.cfg.RetentionDays))
	log := s.logger.With().Str("run_id", run.ID).Logger()

	cutoff := s.now().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)
	expired, err := s.books.PublishedBefore(ctx, cutoff)
	if err != nil {
		err = fmt.Errorf("list expired books: %w", err)
		s.finishRun(ctx, run, err)
		return 0, err
	}
	run.BooksScanned = len(expired)

	deleted := 0
	for _, b := range expired {
		if err = ctx.Err(); err != nil {
			break
		}
		if derr := s.books.Delete(ctx, b.ISBN); derr != nil {
			log.Error().Err(derr).Str("isbn", b.ISBN).Msg("delete expired book failed")
			continue
		}
		deleted++
	}
	run.BooksDeleted = deleted

	s.finishRun(ctx, run, err)
	log.Info().Int("deleted_books_count", deleted).Time("cutoff", cutoff).Msg("retention sweep finished")
	return deleted, err
}

// EnrichAuthors runs the popular-author enrichment and records it as a run.
func (s *Service) EnrichAuthors(ctx context.Context) (author.Result, error) {
	run := s.startRun(ctx, KindPopularAuthors, "")
	res, err := s.authors.EnrichPopular(ctx)
	run.BooksScanned = res.BooksScanned
	run.AuthorsFetched = res.AuthorsFetched
	run.AuthorsUpserted = res.AuthorsUpserted
	s.finishRun(ctx, run, err)
	return res, err
}

func (s *Service) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runs.ListRuns(ctx, limit)
}

func (s *Service) startRun(ctx context.Context, kind Kind, params string) *Run {
	run := newRun(kind, params, s.now())
	if err := s.runs.CreateRun(ctx, run); err != nil {
		s.logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to record ingest run")
	}
	return run
}

func (s *Service) finishRun(ctx context.Context, run *Run, err error) {
	run.finish(err, s.now())
	// The sweep context may already be cancelled.
	uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if uerr := s.runs.UpdateRun(uctx, run); uerr != nil {
		s.logger.Warn().Err(uerr).Str("run_id", run.ID).Msg("failed to update ingest run")
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
