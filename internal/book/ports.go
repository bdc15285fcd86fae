package book

import (
	"context"
	"time"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	ExistsByTitleAuthors(ctx context.Context, title string, authors []string) (bool, error)
	// Upsert inserts or fully replaces the record with b.ISBN.
	Upsert(ctx context.Context, b *Book) error
	Delete(ctx context.Context, isbn string) error
	List(ctx context.Context, q Query) ([]Book, int, error)
	// ListPublishedBefore returns books whose publication date is strictly
	// before cutoff. Books without a date are never returned.
	ListPublishedBefore(ctx context.Context, cutoff time.Time) ([]Book, error)
}
