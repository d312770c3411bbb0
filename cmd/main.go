package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/discovery/internal/adapters/http/api"
	"github.com/okian/discovery/internal/adapters/http/swagger"
	"github.com/okian/discovery/internal/adapters/repository"
	app "github.com/okian/discovery/internal/app"
	"github.com/okian/discovery/internal/config"
	"github.com/okian/discovery/internal/domain/interest"
	"github.com/okian/discovery/internal/domain/ranking"
	"github.com/okian/discovery/internal/domain/search"
	"github.com/okian/discovery/internal/domain/trending"
	"github.com/okian/discovery/internal/supervisor"
	"github.com/okian/discovery/pkg/logger"
)

// HTTP server timeout constants.
const (
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, logger.Get()); err != nil {
		logger.Get().Error(ctx, "discovery service failed", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the service and blocks until ctx is canceled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	opts, err := serviceOptions(cfg)
	if err != nil {
		return err
	}
	svc := app.New(append(opts, app.WithLogger(log))...)

	tree := supervisor.NewTree(logger.Slog(), supervisor.TreeConfig{ShutdownTimeout: cfg.HTTP.ShutdownTimeout})

	var snapshotter *repository.Snapshotter
	if cfg.Snapshot.Path != "" {
		snapshotter = repository.NewSnapshotter(
			repository.NewFileStore(cfg.Snapshot.Path),
			svc.Profile(),
			repository.WithInterval(cfg.Snapshot.Interval),
			repository.WithLogger(log.Named("snapshot")),
		)
		if err := snapshotter.Restore(ctx); err != nil {
			return fmt.Errorf("restore interest profile: %w", err)
		}
		tree.AddStateService(snapshotter)
	}
	tree.AddStateService(supervisor.NewRuntimeMetricsService(systemMetricsInterval, svc))
	tree.AddPipelineService(supervisor.NewPipelineService(svc))

	srv := newHTTPServer(cfg, svc, log)
	tree.AddAPIService(supervisor.NewHTTPServerService(srv, cfg.HTTP.ShutdownTimeout, log.Named("http")))

	log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
	err = tree.Serve(ctx)

	if snapshotter != nil {
		// The pipeline may drain after the snapshotter's last tick.
		if ferr := snapshotter.Flush(context.WithoutCancel(ctx)); ferr != nil {
			log.Error(ctx, "final snapshot failed", logger.Error(ferr))
		}
	}
	log.Info(ctx, "server stopped")

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor: %w", err)
	}
	return nil
}

// serviceOptions maps configuration onto service options.
func serviceOptions(cfg *config.Config) ([]app.Option, error) {
	velocity, err := trending.NewEstimator(cfg.Trending.Velocity, cfg.Trending.VelocitySeed, cfg.Trending.VelocitySpread)
	if err != nil {
		return nil, fmt.Errorf("trending velocity: %w", err)
	}

	r := cfg.Ranking
	s := cfg.Search
	in := cfg.Interactions
	return []app.Option{
		app.WithMaxItems(cfg.MaxItems),
		app.WithRankingWeights(ranking.Weights{
			AffinityWeight: r.AffinityWeight,
			BaseAffinity:   r.BaseAffinity,
			LikeWeight:     r.LikeWeight,
			CommentWeight:  r.CommentWeight,
			ShareWeight:    r.ShareWeight,
			RecencyGravity: r.RecencyGravity,
			RecencyOffset:  r.RecencyOffset,
			InterestBoost:  r.InterestBoost,
		}),
		app.WithSearchWeights(search.Weights{Exact: s.ExactWeight, Phrase: s.PhraseWeight, Token: s.TokenWeight}),
		app.WithSortByRelevance(s.SortByRelevance),
		app.WithVelocityEstimator(velocity),
		app.WithInteractionWeights(interest.Weights{View: in.ViewWeight, Like: in.LikeWeight, Click: in.ClickWeight}),
		app.WithSeedAffinity(in.SeedAffinity),
		app.WithWorkerCount(in.WorkerCount),
		app.WithQueueSize(in.QueueSize),
		app.WithDedupeSize(in.DedupeSize),
	}, nil
}

func newHTTPServer(cfg *config.Config, svc *app.Service, log logger.Logger) *http.Server {
	apiServer := api.NewServer(svc, svc,
		api.WithCORSOrigins(cfg.HTTP.CORSOrigins),
		api.WithRateLimit(cfg.HTTP.RateLimit),
		api.WithLogger(log.Named("api")),
	)
	r := chi.NewRouter()
	apiServer.Register(r)
	swagger.Register(r)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
