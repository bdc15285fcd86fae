// Package app wires configuration into stores, external clients and the
// services shared by the API server and the sweep CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"bookfeed/internal/author"
	"bookfeed/internal/book"
	"bookfeed/internal/config"
	"bookfeed/internal/ingest"
	"bookfeed/internal/nlp"
	"bookfeed/internal/platform/amazon"
	"bookfeed/internal/platform/googlebooks"
	"bookfeed/internal/platform/knowledgegraph"
	"bookfeed/internal/platform/mongodb"
)

const repoTimeout = 5 * time.Second

type App struct {
	Books   *book.Service
	Authors *author.Service
	Ingest  *ingest.Service

	ping    func(ctx context.Context) error
	closers []func()
}

// Ping checks that the backing store answers.
func (a *App) Ping(ctx context.Context) error {
	if a.ping == nil {
		return nil
	}
	return a.ping(ctx)
}

// Close releases store connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type stores struct {
	books   book.Repository
	authors author.Repository
	runs    ingest.Repository
}

func New(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{}

	tax, err := loadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	classifier, err := nlp.NewModelClassifier()
	if err != nil {
		return nil, fmt.Errorf("load sentiment model: %w", err)
	}
	engine := nlp.NewEngine(tax,
		nlp.WithSentimentClassifier(classifier),
		nlp.WithLogger(logger.With().Str("component", "nlp").Logger()),
	)

	st, err := a.openStores(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	cache, err := a.authorCache(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	books := googlebooks.NewClient(cfg.GoogleBooksAPIKey, cfg.GoogleBooksRPS, cfg.HTTPMaxRetries)
	kg := knowledgegraph.NewClient(cfg.KGAPIKey, cfg.GoogleBooksRPS, nil, "")
	commerce := amazon.NewClient(amazon.Config{
		AccessKey:  cfg.Amazon.AccessKey,
		SecretKey:  cfg.Amazon.SecretKey,
		PartnerTag: cfg.Amazon.PartnerTag,
		Host:       cfg.Amazon.Host,
		Region:     cfg.Amazon.Region,
	}, nil)
	if !cfg.AmazonConfigured() {
		logger.Warn().Msg("amazon credentials missing; sweeps will persist no books")
	}

	bookLog := logger.With().Str("component", "book").Logger()
	authorLog := logger.With().Str("component", "author").Logger()
	ingestLog := logger.With().Str("component", "ingest").Logger()

	a.Books = book.NewService(st.books, engine, &bookLog)
	a.Authors = author.NewService(st.authors, books, kg, cache, engine, author.Config{
		PopularBooksMax: cfg.PopularBooksMax,
		Concurrency:     cfg.AuthorConcurrency,
	}, &authorLog)
	a.Ingest = ingest.NewService(books, commerce, a.Books, a.Authors, st.runs, engine, ingest.Config{
		PageDelay:      cfg.PageDelay,
		CustomQueryCap: cfg.CustomQueryCap,
		MaxQueryPages:  cfg.MaxQueryPages,
		RetentionDays:  cfg.RetentionDays,
	}, &ingestLog)
	return a, nil
}

func loadTaxonomy(path string) (*nlp.Taxonomy, error) {
	if path == "" {
		return nlp.DefaultTaxonomy()
	}
	return nlp.LoadTaxonomy(path)
}

func (a *App) openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			return stores{}, fmt.Errorf("create db pool: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			return stores{}, fmt.Errorf("ping database (%s): %w", RedactDSN(cfg.DBDSN), err)
		}
		a.ping = pool.Ping
		return stores{
			books:   book.NewPostgresRepo(pool, repoTimeout),
			authors: author.NewPostgresRepo(pool, repoTimeout),
			runs:    ingest.NewPostgresRepo(pool, repoTimeout),
		}, nil

	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		bookRepo := book.NewMongoRepo(db, mongodb.BooksCollection, repoTimeout)
		authorRepo := author.NewMongoRepo(db, mongodb.AuthorsCollection, repoTimeout)
		runRepo := ingest.NewMongoRepo(db, mongodb.RunsCollection, repoTimeout)
		if err := mongodb.EnsureIndexes(ctx, bookRepo, authorRepo, runRepo); err != nil {
			return stores{}, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		a.ping = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return stores{books: bookRepo, authors: authorRepo, runs: runRepo}, nil

	case config.StoreMemory:
		return stores{
			books:   book.NewMemoryRepo(),
			authors: author.NewMemoryRepo(),
			runs:    ingest.NewMemoryRepo(),
		}, nil
	}
	return stores{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// authorCache uses Redis when REDIS_ADDR is set so that replicas share
// lookups, and a bounded in-process LRU otherwise.
func (a *App) authorCache(ctx context.Context, cfg config.Config, logger *zerolog.Logger) (author.LookupCache, error) {
	if cfg.RedisAddr == "" {
		return author.NewLRUCache(cfg.AuthorCacheSize, cfg.AuthorCacheTTL), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	logger.Info().Str("addr", cfg.RedisAddr).Msg("author cache backed by redis")
	return author.NewRedisCache(rdb, "", cfg.AuthorCacheTTL), nil
}
