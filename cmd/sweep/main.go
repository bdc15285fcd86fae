// Command sweep runs the ingestion pipelines once, for cron and operators.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bookfeed/internal/app"
	"bookfeed/internal/config"
	"bookfeed/internal/platform/logging"
)

// appBuilder opens the configured stores and services.
type appBuilder func(ctx context.Context) (*app.App, config.Config, error)

func buildFromEnv(ctx context.Context) (*app.App, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	a, err := app.New(ctx, cfg, &logger)
	if err != nil {
		return nil, cfg, err
	}
	return a, cfg, nil
}

func newRootCmd(build appBuilder) *cobra.Command {
	root := &cobra.Command{
		Use:           "sweep",
		Short:         "Run book ingestion and enrichment jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newUnreleasedCmd(build),
		newQueryCmd(build),
		newPruneCmd(build),
		newAuthorsCmd(build),
		newSeedCmd(build),
		newTokenCmd(),
	)
	return root
}

// withApp builds the app for one command run and closes it afterwards.
func withApp(cmd *cobra.Command, build appBuilder, fn func(ctx context.Context, a *app.App) (any, error)) error {
	ctx := cmd.Context()
	a, _, err := build(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := fn(ctx, a)
	if err != nil {
		return err
	}
	return printJSON(cmd, out)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(buildFromEnv).ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
