package service

import (
	"time"

	"github.com/okian/discovery/internal/domain/interest"
	"github.com/okian/discovery/internal/domain/ranking"
	"github.com/okian/discovery/internal/domain/search"
	"github.com/okian/discovery/internal/domain/trending"
	"github.com/okian/discovery/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service and its engines.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxItems caps the collection size of every engine call.
func WithMaxItems(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithRankingWeights sets the feed scoring weights.
func WithRankingWeights(w ranking.Weights) Option {
	return func(s *Service) {
		s.rankingWeights = w
	}
}

// WithSearchWeights sets the keyword match weights.
func WithSearchWeights(w search.Weights) Option {
	return func(s *Service) {
		s.searchWeights = w
	}
}

// WithSortByRelevance makes relevance the default search order.
func WithSortByRelevance(enabled bool) Option {
	return func(s *Service) {
		s.sortByRelevance = enabled
	}
}

// WithVelocityEstimator sets the trending velocity estimator.
func WithVelocityEstimator(v trending.VelocityEstimator) Option {
	return func(s *Service) {
		if v != nil {
			s.velocity = v
		}
	}
}

// WithInteractionWeights sets the affinity increment of each interaction kind.
func WithInteractionWeights(w interest.Weights) Option {
	return func(s *Service) {
		s.interactionWeights = w
	}
}

// WithSeedAffinity sets the starting affinity of a new category.
func WithSeedAffinity(seed float64) Option {
	return func(s *Service) {
		s.seedAffinity = seed
	}
}

// WithWorkerCount sets the number of interaction workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the interaction queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many interaction event ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClock overrides the ranking clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
