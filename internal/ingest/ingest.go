package ingest

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrUnknownGenre = errors.New("unknown genre")
	ErrEmptyQuery   = errors.New("query is required")
)

// Kind names the pipeline entry point that produced a run.
type Kind string

const (
	KindUnreleasedByGenre Kind = "UNRELEASED_BY_GENRE"
	KindCustomQuery       Kind = "CUSTOM_QUERY"
	KindRetention         Kind = "RETENTION"
	KindPopularAuthors    Kind = "POPULAR_AUTHORS"
)

type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Run is one pipeline invocation as recorded in the run ledger.
type Run struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"kind"`
	Params          string     `json:"params,omitempty"`
	Status          Status     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	BooksScanned    int        `json:"books_scanned"`
	BooksUpserted   int        `json:"books_upserted"`
	BooksDeleted    int        `json:"books_deleted"`
	AuthorsFetched  int        `json:"authors_fetched"`
	AuthorsUpserted int        `json:"authors_upserted"`
	Error           string     `json:"error,omitempty"`
}

func newRun(kind Kind, params string, now time.Time) *Run {
	return &Run{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Kind:      kind,
		Params:    params,
		Status:    StatusRunning,
		StartedAt: now.UTC(),
	}
}

func (r *Run) finish(err error, now time.Time) {
	t := now.UTC()
	r.FinishedAt = &t
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusCompleted
}
