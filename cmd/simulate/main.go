package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/discovery/internal/simulate"
	"github.com/okian/discovery/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := simulate.DefaultConfig()
	var (
		logFormat  string
		runTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive a discovery service with synthetic traffic",
		Long: "Seeds a synthetic catalog, submits interaction batches and checks that feed, " +
			"search, trending and interest responses keep their ordering guarantees.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logger.Options{Format: logFormat, Output: cmd.ErrOrStderr()}); err != nil {
				return err
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()

			_, err := simulate.Run(ctx, cfg, logger.Named("simulate"))
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.IntVar(&cfg.Items, "items", cfg.Items, "catalog size")
	f.IntVar(&cfg.Authors, "authors", cfg.Authors, "distinct authors in the catalog")
	f.StringSliceVar(&cfg.Categories, "categories", cfg.Categories, "category tags")
	f.IntVar(&cfg.Interactions, "interactions", cfg.Interactions, "interactions to submit")
	f.IntVar(&cfg.DuplicateEvery, "duplicate-every", cfg.DuplicateEvery, "replay every Nth interaction (0 disables)")
	f.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "interactions per batch")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent submitters")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.DurationVar(&cfg.SettleTimeout, "settle-timeout", cfg.SettleTimeout, "how long to wait for the queue to drain")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "generator seed")
	f.StringVar(&cfg.Query, "query", cfg.Query, "search query to verify")
	f.StringVar(&cfg.OutputFile, "output", "", "write the generated catalog as JSON")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every batch")
	f.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	f.DurationVar(&runTimeout, "run-timeout", defaultRunTimeout, "overall deadline")
	return cmd
}
