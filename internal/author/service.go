package author

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bookfeed/internal/nlp"
	"bookfeed/internal/normalize"
	"bookfeed/internal/platform/googlebooks"
	"bookfeed/internal/platform/knowledgegraph"
)

type PopularSource interface {
	PopularVolumes(ctx context.Context, max int) ([]googlebooks.Volume, error)
}

type KnowledgeLookup interface {
	LookupPerson(ctx context.Context, name string) (*knowledgegraph.Person, error)
}

type Config struct {
	// PopularBooksMax caps how many popular volumes are scanned for names.
	PopularBooksMax int
	// Concurrency bounds the per-author workers. 1 runs sequentially.
	Concurrency int
}

// Result summarizes one enrichment run.
type Result struct {
	BooksScanned    int      `json:"books_scanned"`
	AuthorsFound    int      `json:"authors_found"`
	AuthorsFetched  int      `json:"authors_fetched"`
	AuthorsUpserted int      `json:"authors_upserted"`
	Authors         []string `json:"authors"`
}

type Service struct {
	repo    Repository
	source  PopularSource
	lookup  KnowledgeLookup
	cache   LookupCache
	engine  *nlp.Engine
	cfg     Config
	logger  *zerolog.Logger
	mergeMu sync.Mutex
}

func NewService(repo Repository, source PopularSource, lookup KnowledgeLookup, cache LookupCache, engine *nlp.Engine, cfg Config, logger *zerolog.Logger) *Service {
	if cfg.PopularBooksMax <= 0 || cfg.PopularBooksMax > googlebooks.PopularCap {
		cfg.PopularBooksMax = googlebooks.PopularCap
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cache == nil {
		cache = NewLRUCache(DefaultCacheSize, 0)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		repo:   repo,
		source: source,
		lookup: lookup,
		cache:  cache,
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) GetByName(ctx context.Context, name string) (Author, error) {
	return s.repo.GetByName(ctx, normalize.Name(name))
}

// EnrichPopular discovers authors of popular books, enriches each from the
// knowledge lookup and merges the result into the store. Failures for a
// single author are logged and skipped.
func (s *Service) EnrichPopular(ctx context.Context) (Result, error) {
	var res Result

	volumes, err := s.source.PopularVolumes(ctx, s.cfg.PopularBooksMax)
	if err != nil {
		if len(volumes) == 0 {
			return res, fmt.Errorf("fetch popular books: %w", err)
		}
		s.logger.Warn().Err(err).Int("volumes", len(volumes)).Msg("popular books fetch stopped early")
	}
	res.BooksScanned = len(volumes)

	names := UniqueAuthorNames(volumes)
	res.AuthorsFound = len(names)
	if len(names) == 0 {
		s.logger.Warn().Msg("no authors found in popular books")
		return res, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, name := range names {
		name := name
		g.Go(func() error {
			return s.enrichOne(gctx, name, &res)
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	s.logger.Info().
		Int("books_scanned", res.BooksScanned).
		Int("authors_found", res.AuthorsFound).
		Int("authors_upserted", res.AuthorsUpserted).
		Msg("popular authors enriched")
	return res, nil
}

// enrichOne only returns an error when ctx is done.
func (s *Service) enrichOne(ctx context.Context, name string, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := s.logger.With().Str("author", name).Logger()

	profile, err := s.Lookup(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error().Err(err).Msg("knowledge lookup failed")
		return nil
	}
	if profile == nil {
		log.Warn().Msg("could not fetch data for author")
		return nil
	}

	incoming := s.derive(profile, log)
	if incoming.Name == "" {
		incoming.Name = name
	}

	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()
	res.AuthorsFetched++
	if err := s.merge(ctx, &incoming); err != nil {
		log.Error().Err(err).Msg("author merge failed")
		return nil
	}
	res.AuthorsUpserted++
	res.Authors = append(res.Authors, incoming.Name)
	return nil
}

// Lookup resolves name through the cache, then the knowledge lookup. Misses
// are cached as absent; transport errors are not cached.
func (s *Service) Lookup(ctx context.Context, name string) (*Profile, error) {
	if p, hit, err := s.cache.Get(ctx, name); err != nil {
		s.logger.Warn().Err(err).Str("author", name).Msg("author cache read failed")
	} else if hit {
		s.logger.Debug().Str("author", name).Msg("using cached author data")
		return p, nil
	}

	person, err := s.lookup.LookupPerson(ctx, name)
	if err != nil {
		return nil, err
	}
	var p *Profile
	if person != nil {
		p = &Profile{Name: person.Name, Biography: person.Biography, ImageURL: person.ImageURL}
	}
	if err := s.cache.Set(ctx, name, p); err != nil {
		s.logger.Warn().Err(err).Str("author", name).Msg("author cache write failed")
	}
	return p, nil
}

func (s *Service) derive(p *Profile, log zerolog.Logger) Author {
	a := Author{
		Name:      normalize.Name(p.Name),
		Biography: p.Biography,
		ImageURL:  p.ImageURL,
	}
	if p.Biography == "" {
		log.Warn().Msg("no biography for author")
		return a
	}
	attrs := s.engine.ExtractAttributes(p.Biography)
	a.Themes = attrs.Themes
	a.WritingStyle = attrs.WritingStyle
	a.Tone = attrs.Tone
	a.GenresWritten = s.engine.InferAuthorGenres(p.Biography)
	return a
}

// merge must be called with mergeMu held.
func (s *Service) merge(ctx context.Context, incoming *Author) error {
	existing, err := s.repo.GetByName(ctx, incoming.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		return s.repo.Create(ctx, incoming)
	case err != nil:
		return err
	}
	merged := Merge(existing, *incoming)
	if err := s.repo.Update(ctx, &merged); err != nil {
		return err
	}
	*incoming = merged
	return nil
}

// UniqueAuthorNames returns the distinct normalized author names across
// volumes in first-seen order.
func UniqueAuthorNames(volumes []googlebooks.Volume) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range volumes {
		if v.VolumeInfo == nil {
			continue
		}
		for _, raw := range v.VolumeInfo.Authors {
			name := normalize.Name(raw)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
