package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"bookfeed/internal/app"
)

func newUnreleasedCmd(build appBuilder) *cobra.Command {
	var genre string
	cmd := &cobra.Command{
		Use:   "unreleased",
		Short: "Ingest upcoming books of one genre",
		RunE: func(cmd *cobra.Command, args []string) error {
			if genre == "" {
				return errors.New("--genre is required")
			}
			return withApp(cmd, build, func(ctx context.Context, a *app.App) (any, error) {
				return a.Ingest.SweepUnreleased(ctx, genre)
			})
		},
	}
	cmd.Flags().StringVar(&genre, "genre", "", "genre name from the taxonomy, e.g. Mystery")
	return cmd
}

func newQueryCmd(build appBuilder) *cobra.Command {
	var q string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Ingest upcoming books matching a free-text search",
		RunE: func(cmd *cobra.Command, args []string) error {
			if q == "" {
				return errors.New("--q is required")
			}
			return withApp(cmd, build, func(ctx context.Context, a *app.App) (any, error) {
				return a.Ingest.SweepQuery(ctx, q)
			})
		},
	}
	cmd.Flags().StringVar(&q, "q", "", "search query")
	return cmd
}

func newPruneCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete books published before the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, build, func(ctx context.Context, a *app.App) (any, error) {
				n, err := a.Ingest.PruneExpired(ctx)
				return map[string]int{"deleted_books_count": n}, err
			})
		},
	}
}

func newAuthorsCmd(build appBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "authors",
		Short: "Enrich the authors of popular books",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, build, func(ctx context.Context, a *app.App) (any, error) {
				return a.Ingest.EnrichAuthors(ctx)
			})
		},
	}
}
