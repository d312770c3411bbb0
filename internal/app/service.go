// Package service wires the discovery engines, the interest profile and the
// interaction pipeline behind the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/discovery/internal/adapters/mq/queue"
	"github.com/okian/discovery/internal/adapters/mq/worker"
	"github.com/okian/discovery/internal/domain/dedupe"
	"github.com/okian/discovery/internal/domain/interest"
	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/internal/domain/ranking"
	"github.com/okian/discovery/internal/domain/search"
	"github.com/okian/discovery/internal/domain/trending"
	"github.com/okian/discovery/internal/domain/types"
	"github.com/okian/discovery/pkg/logger"
	"github.com/okian/discovery/pkg/metrics"
)

const (
	defaultMaxItems   = 10_000
	defaultQueueSize  = 10_000
	defaultDedupeSize = 100_000
)

// Rejection reasons reported to metrics.
const (
	reasonTooManyItems = "too_many_items"
	reasonInvalidItem  = "invalid_item"
	reasonInvalidKind  = "invalid_kind"
)

// Service implements the API dependencies for the discovery engine.
type Service struct {
	mu sync.RWMutex

	// Engines
	ranker   *ranking.Engine
	searcher *search.Engine
	trends   *trending.Engine

	// Interest profile
	profile *interest.Store
	tracker *interest.Tracker
	deduper dedupe.Deduper

	// Async interaction pipeline
	queue *queue.InMemoryQueue
	pool  *worker.Pool

	// Configuration
	maxItems           int
	rankingWeights     ranking.Weights
	searchWeights      search.Weights
	sortByRelevance    bool
	velocity           trending.VelocityEstimator
	interactionWeights interest.Weights
	seedAffinity       float64
	workerCount        int
	queueSize          int
	dedupeSize         int
	now                func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service. Engines and the interest profile are usable
// immediately; batch ingestion needs Start.
func New(opts ...Option) *Service {
	s := &Service{
		maxItems:           defaultMaxItems,
		rankingWeights:     ranking.DefaultWeights(),
		searchWeights:      search.DefaultWeights(),
		velocity:           trending.ConstantVelocity(1),
		interactionWeights: interest.DefaultWeights(),
		seedAffinity:       interest.DefaultSeedAffinity,
		workerCount:        runtime.NumCPU(),
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		now:                time.Now,
		logger:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.profile = interest.NewStore(interest.WithSeedAffinity(s.seedAffinity))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.tracker = interest.NewTracker(s.profile,
		interest.WithWeights(s.interactionWeights),
		interest.WithDeduper(s.deduper),
		interest.WithLogger(s.logger.Named("interest")),
	)
	s.ranker = ranking.New(
		ranking.WithWeights(s.rankingWeights),
		ranking.WithClock(s.now),
		ranking.WithInterests(s.profile),
		ranking.WithLogger(s.logger.Named("ranking")),
	)
	s.searcher = search.New(
		search.WithWeights(s.searchWeights),
		search.WithSortByRelevance(s.sortByRelevance),
	)
	s.trends = trending.New(
		trending.WithEstimator(s.velocity),
		trending.WithLogger(s.logger.Named("trending")),
	)
	return s
}

// Start launches the interaction worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.tracker, worker.WithLogger(s.logger))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "discovery service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("max_items", s.maxItems),
	)
	return nil
}

// Stop drains queued interactions and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping discovery service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "discovery service stopped")
}

// Profile returns the interest profile, e.g. for snapshotting.
func (s *Service) Profile() *interest.Store { return s.profile }

// RankFeed ranks items for viewer.
func (s *Service) RankFeed(ctx context.Context, items []model.ContentItem, viewer model.User) (ranking.Feed, error) {
	if err := s.admit(items); err != nil {
		return ranking.Feed{}, err
	}
	start := time.Now()
	feed := s.ranker.Rank(ctx, items, viewer)
	metrics.RecordEngineRequest(metrics.EngineFeed, len(items), sinceMs(start))
	if len(feed.Defaulted) > 0 {
		metrics.RecordMissingTimestamp(len(feed.Defaulted))
	}
	return feed, nil
}

// Search filters items by query over fields.
func (s *Service) Search(ctx context.Context, query string, items []model.ContentItem, fields []string, order search.Order) ([]model.ContentItem, error) {
	if err := s.admit(items); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = search.DefaultFields
	}

	start := time.Now()
	out := s.searcher.SearchSorted(query, items, fields, s.searcher.ByRelevance(order))
	metrics.RecordEngineRequest(metrics.EngineSearch, len(items), sinceMs(start))
	metrics.RecordSearchMatches(len(out))
	s.logger.Debug(ctx, "search completed",
		logger.String("query", query),
		logger.Int("items", len(items)),
		logger.Int("matches", len(out)),
	)
	return out, nil
}

// Trending orders items by likes times velocity.
func (s *Service) Trending(ctx context.Context, items []model.ContentItem) ([]model.ContentItem, error) {
	if err := s.admit(items); err != nil {
		return nil, err
	}
	start := time.Now()
	out := s.trends.Trend(ctx, items)
	metrics.RecordEngineRequest(metrics.EngineTrending, len(items), sinceMs(start))
	return out, nil
}

// RecordInteraction applies one interaction synchronously. It reports
// whether the interaction was a duplicate.
func (s *Service) RecordInteraction(ctx context.Context, in model.Interaction) (bool, error) {
	dup, err := s.tracker.Record(ctx, in)
	if err != nil {
		metrics.RecordRejectedInput(reasonInvalidKind)
		return false, err
	}
	return dup, nil
}

// EnqueueInteractions queues interactions for the worker pool. Every kind is
// checked before anything is queued. It returns how many were accepted; fewer
// than len(ins) means the queue is full.
func (s *Service) EnqueueInteractions(ctx context.Context, ins []model.Interaction) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return 0, ErrNotStarted
	}
	if len(ins) > s.maxItems {
		metrics.RecordRejectedInput(reasonTooManyItems)
		return 0, fmt.Errorf("%w: %d interactions, limit %d", ErrTooManyItems, len(ins), s.maxItems)
	}
	for i, in := range ins {
		if _, err := model.ParseInteractionKind(string(in.Kind)); err != nil {
			metrics.RecordRejectedInput(reasonInvalidKind)
			return 0, fmt.Errorf("interactions[%d]: %w", i, err)
		}
	}

	accepted := s.queue.EnqueueAll(ctx, ins)
	if accepted < len(ins) {
		s.logger.Warn(ctx, "interaction queue full",
			logger.Int("accepted", accepted),
			logger.Int("rejected", len(ins)-accepted),
		)
	}
	return accepted, nil
}

// Affinity returns the learned affinity for category.
func (s *Service) Affinity(category string) float64 {
	return s.profile.GetAffinity(category)
}

// TopInterests returns the n strongest categories.
func (s *Service) TopInterests(n int) []types.InterestEntry {
	return s.profile.Top(n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := s.profile.Len()
	metrics.UpdateProfileCategories(categories)

	stats := map[string]interface{}{
		"started":     s.started,
		"maxItems":    s.maxItems,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"categories":  categories,
		"seenEvents":  s.deduper.Size(),
	}
	if s.started {
		ctx := context.Background()
		stats["queueLength"] = s.queue.Len(ctx)
		stats["workers"] = s.pool.Stats()
	}
	return stats
}

// admit enforces the collection cap and item invariants.
func (s *Service) admit(items []model.ContentItem) error {
	if len(items) > s.maxItems {
		metrics.RecordRejectedInput(reasonTooManyItems)
		return fmt.Errorf("%w: %d items, limit %d", ErrTooManyItems, len(items), s.maxItems)
	}
	if err := model.ValidateItems(items); err != nil {
		metrics.RecordRejectedInput(reasonInvalidItem)
		return err
	}
	return nil
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
