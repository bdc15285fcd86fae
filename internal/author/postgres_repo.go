package author

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
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

func (r *PostgresRepo) GetByName(ctx context.Context, name string) (Author, error) {
	const query = `
		SELECT id::text, name, biography, image_url, genres_written, themes, writing_style, tone, updated_at
		FROM authors
		WHERE name = $1`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var a Author
	err := r.db.QueryRow(ctx, query, name).Scan(
		&a.ID, &a.Name, &a.Biography, &a.ImageURL, &a.GenresWritten, &a.Themes, &a.WritingStyle, &a.Tone, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Author{}, ErrNotFound
		}
		return Author{}, err
	}
	return a, nil
}

func (r *PostgresRepo) Create(ctx context.Context, a *Author) error {
	const sql = `
		INSERT INTO authors (name, biography, image_url, genres_written, themes, writing_style, tone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id::text, updated_at`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.QueryRow(ctx, sql,
		a.Name, a.Biography, a.ImageURL, nonNil(a.GenresWritten), nonNil(a.Themes), nonNil(a.WritingStyle), nonNil(a.Tone),
	).Scan(&a.ID, &a.UpdatedAt)
}

func (r *PostgresRepo) Update(ctx context.Context, a *Author) error {
	const sql = `
		UPDATE authors SET
			biography = $2,
			image_url = $3,
			genres_written = $4,
			themes = $5,
			writing_style = $6,
			tone = $7,
			updated_at = NOW()
		WHERE name = $1
		RETURNING id::text, updated_at`

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	err := r.db.QueryRow(ctx, sql,
		a.Name, a.Biography, a.ImageURL, nonNil(a.GenresWritten), nonNil(a.Themes), nonNil(a.WritingStyle), nonNil(a.Tone),
	).Scan(&a.ID, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
