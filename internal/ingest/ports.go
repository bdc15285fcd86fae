package ingest

import (
	"context"
	"time"

	"bookfeed/internal/author"
	"bookfeed/internal/book"
	"bookfeed/internal/platform/amazon"
	"bookfeed/internal/platform/googlebooks"
)

// Repository persists the run ledger.
type Repository interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

type VolumeSearcher interface {
	SearchVolumes(ctx context.Context, q string, startIndex, maxResults int) (*googlebooks.VolumesPage, error)
}

type CommerceLookup interface {
	SearchByISBN(ctx context.Context, isbn string) (*amazon.Offer, error)
}

// BookStore is the slice of the book service the pipeline writes through.
type BookStore interface {
	Exists(ctx context.Context, title string, authors []string) (bool, error)
	GetByISBN(ctx context.Context, isbn string) (book.Book, error)
	Save(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, isbn string) error
	PublishedBefore(ctx context.Context, cutoff time.Time) ([]book.Book, error)
}

type AuthorEnricher interface {
	EnrichPopular(ctx context.Context) (author.Result, error)
}
