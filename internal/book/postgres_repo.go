package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookfeed/internal/normalize"
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

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const bookColumns = `
	id::text, isbn, title, subtitle, authors, publisher, published_date, published_precision,
	page_count, genres, main_genre, description, cover_image, themes, writing_style,
	tone, keywords, amazon_affiliate_link, favorite_count, updated_at`

func scanBook(row pgx.Row) (Book, error) {
	var (
		b         Book
		published *time.Time
		precision string
	)
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Subtitle, &b.Authors, &b.Publisher, &published, &precision,
		&b.PageCount, &b.Genres, &b.MainGenre, &b.Description, &b.CoverImage, &b.Themes, &b.WritingStyle,
		&b.Tone, &b.Keywords, &b.AmazonAffiliateLink, &b.FavoriteCount, &b.UpdatedAt,
	)
	if err != nil {
		return Book{}, err
	}
	if published != nil {
		b.PublishedDate = normalize.DateFromParts(*published, precision)
	}
	return b, nil
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(timeoutCtx, `SELECT `+bookColumns+` FROM books WHERE isbn = $1`, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) ExistsByTitleAuthors(ctx context.Context, title string, authors []string) (bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(timeoutCtx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE title = $1 AND authors = $2)`,
		title, nonNil(authors),
	).Scan(&exists)
	return exists, err
}

func (r *PostgresRepo) Upsert(ctx context.Context, b *Book) error {
	const sql = `
		INSERT INTO books (isbn, title, subtitle, authors, publisher, published_date, published_precision,
		                   page_count, genres, main_genre, description, cover_image, themes, writing_style,
		                   tone, keywords, amazon_affiliate_link, favorite_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
		ON CONFLICT (isbn) DO UPDATE SET
			title = EXCLUDED.title,
			subtitle = EXCLUDED.subtitle,
			authors = EXCLUDED.authors,
			publisher = EXCLUDED.publisher,
			published_date = EXCLUDED.published_date,
			published_precision = EXCLUDED.published_precision,
			page_count = EXCLUDED.page_count,
			genres = EXCLUDED.genres,
			main_genre = EXCLUDED.main_genre,
			description = EXCLUDED.description,
			cover_image = EXCLUDED.cover_image,
			themes = EXCLUDED.themes,
			writing_style = EXCLUDED.writing_style,
			tone = EXCLUDED.tone,
			keywords = EXCLUDED.keywords,
			amazon_affiliate_link = EXCLUDED.amazon_affiliate_link,
			favorite_count = EXCLUDED.favorite_count,
			updated_at = NOW()
		RETURNING id::text, updated_at`

	var published *time.Time
	precision := string(normalize.PrecisionDay)
	if !b.PublishedDate.IsZero() {
		t := b.PublishedDate.Time
		published = &t
		precision = string(b.PublishedDate.Precision)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, sql,
		b.ISBN, b.Title, b.Subtitle, nonNil(b.Authors), b.Publisher, published, precision,
		b.PageCount, nonNil(b.Genres), b.MainGenre, b.Description, b.CoverImage, nonNil(b.Themes), nonNil(b.WritingStyle),
		nonNil(b.Tone), nonNil(b.Keywords), b.AmazonAffiliateLink, b.FavoriteCount,
	).Scan(&b.ID, &b.UpdatedAt)
}

func (r *PostgresRepo) Delete(ctx context.Context, isbn string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE isbn = $1`, isbn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(genres)", argn))
		args = append(args, q.Genre)
		argn++
	}
	where := "WHERE " + strings.Join(clauses, " AND ")

	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.AfterISBN != "" {
		where += fmt.Sprintf(" AND isbn > $%d", argn)
		args = append(args, q.AfterISBN)
		argn++
		q.Offset = 0
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	dataSQL := fmt.Sprintf(`SELECT %s FROM books %s ORDER BY isbn ASC LIMIT $%d OFFSET $%d`,
		bookColumns, where, argn, argn+1)
	args = append(args, limit, q.Offset)

	timeoutCtx2, cancel2 := r.withTimeout(ctx)
	defer cancel2()
	rows, err := r.db.Query(timeoutCtx2, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) ListPublishedBefore(ctx context.Context, cutoff time.Time) ([]Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx,
		`SELECT `+bookColumns+` FROM books WHERE published_date < $1::timestamp ORDER BY isbn`, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
