package ingest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const sql = `
		INSERT INTO ingest_runs (id, kind, params, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.db.Exec(ctx, sql, run.ID, string(run.Kind), run.Params, string(run.Status), run.StartedAt)
	return err
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const sql = `
		UPDATE ingest_runs SET
			finished_at = $1,
			status = $2,
			books_scanned = $3,
			books_upserted = $4,
			books_deleted = $5,
			authors_fetched = $6,
			authors_upserted = $7,
			error = $8
		WHERE id = $9`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	_, err := r.db.Exec(ctx, sql,
		run.FinishedAt, string(run.Status), run.BooksScanned, run.BooksUpserted, run.BooksDeleted,
		run.AuthorsFetched, run.AuthorsUpserted, run.Error, run.ID,
	)
	return err
}

func (r *PostgresRepo) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	const sql = `
		SELECT id, kind, params, status, started_at, finished_at, books_scanned, books_upserted,
		       books_deleted, authors_fetched, authors_upserted, error
		FROM ingest_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run          Run
			kind, status string
		)
		if err := rows.Scan(
			&run.ID, &kind, &run.Params, &status, &run.StartedAt, &run.FinishedAt, &run.BooksScanned,
			&run.BooksUpserted, &run.BooksDeleted, &run.AuthorsFetched, &run.AuthorsUpserted, &run.Error,
		); err != nil {
			return nil, err
		}
		run.Kind, run.Status = Kind(kind), Status(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
