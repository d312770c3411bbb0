// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	service "github.com/okian/discovery/internal/app"
	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/internal/domain/ranking"
	"github.com/okian/discovery/internal/domain/search"
	"github.com/okian/discovery/internal/domain/types"
	"github.com/okian/discovery/pkg/logger"
)

// WarningHeader carries non-fatal notices such as defaulted timestamps.
const WarningHeader = "X-Discovery-Warning"

const (
	maxBodyBytes       = 32 << 20
	defaultMaxInterest = 100
)

var validate = validator.New() //nolint:gochecknoglobals // validator caches struct metadata

// Dependencies required by HTTP handlers.
type Dependencies interface {
	RankFeed(ctx context.Context, items []model.ContentItem, viewer model.User) (ranking.Feed, error)
	Search(ctx context.Context, query string, items []model.ContentItem, fields []string, order search.Order) ([]model.ContentItem, error)
	Trending(ctx context.Context, items []model.ContentItem) ([]model.ContentItem, error)

	RecordInteraction(ctx context.Context, in model.Interaction) (bool, error)
	// EnqueueInteractions returns how many interactions were queued.
	EnqueueInteractions(ctx context.Context, ins []model.Interaction) (int, error)

	Affinity(category string) float64
	TopInterests(n int) []types.InterestEntry
}

// Server wires HTTP routes for the discovery API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	feedHandler         *FeedHandler
	searchHandler       *SearchHandler
	trendingHandler     *TrendingHandler
	interactionsHandler *InteractionsHandler
	interestsHandler    *InterestsHandler

	corsOrigins []string
	rateLimit   int
	logger      logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		feedHandler:         NewFeedHandler(deps),
		searchHandler:       NewSearchHandler(deps),
		trendingHandler:     NewTrendingHandler(deps),
		interactionsHandler: NewInteractionsHandler(deps),
		interestsHandler:    NewInterestsHandler(deps, defaultMaxInterest),
		logger:              logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router with every route and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register attaches middleware and routes to r.
func (s *Server) Register(r chi.Router) {
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogging(s.logger))
	r.Use(chimiddleware.Recoverer)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{WarningHeader, "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Group(func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.Limit(s.rateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}

		r.Post("/feed/rank", MetricsMiddleware(s.feedHandler.HandleRank, "feed_rank"))

		searchFn := MetricsMiddleware(s.searchHandler.HandleSearch, "search")
		r.Post("/search", searchFn)
		r.Get("/search", searchFn)

		trendingFn := MetricsMiddleware(s.trendingHandler.HandleTrending, "trending")
		r.Post("/trending", trendingFn)
		r.Get("/trending", trendingFn)

		r.Post("/interactions", MetricsMiddleware(s.interactionsHandler.HandlePost, "interactions"))
		r.Post("/interactions/batch", MetricsMiddleware(s.interactionsHandler.HandleBatch, "interactions_batch"))

		r.Get("/interests", MetricsMiddleware(s.interestsHandler.HandleTop, "interests"))
		r.Get("/interests/{category}", MetricsMiddleware(s.interestsHandler.HandleGet, "interest"))
	})
}

type itemsRequest struct {
	Items []model.ContentItem `json:"items"`
}

type itemsResponse struct {
	Items []model.ContentItem `json:"items"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeJSON reads a JSON body into v and runs struct validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors onto HTTP statuses. Bad input is
// always a 400.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "invalid_input", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
