// Package trending surfaces content whose engagement is growing quickly.
//
// trendingScore = likes * velocity, where velocity comes from a pluggable
// VelocityEstimator. No timestamped engagement stream is available to the
// engine, so there is no built-in definition of velocity: the default
// estimator returns a neutral 1.0.
package trending

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
	"sync"

	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/pkg/logger"
	"github.com/okian/discovery/pkg/metrics"
)

// Estimator names accepted by NewEstimator.
const (
	EstimatorConstant = "constant"
	EstimatorRandom   = "random"
)

const (
	minVelocity         = 1.0
	defaultRandomSeed   = 42
	defaultRandomSpread = 1.0
)

// VelocityEstimator estimates the recent engagement rate of an item.
// Implementations must be safe for concurrent use.
type VelocityEstimator interface {
	EstimateVelocity(item model.ContentItem) float64
}

// VelocityFunc adapts a function to VelocityEstimator.
type VelocityFunc func(item model.ContentItem) float64

// EstimateVelocity implements VelocityEstimator.
func (f VelocityFunc) EstimateVelocity(item model.ContentItem) float64 { return f(item) }

// ConstantVelocity returns the same factor for every item.
type ConstantVelocity float64

// EstimateVelocity implements VelocityEstimator.
func (c ConstantVelocity) EstimateVelocity(model.ContentItem) float64 { return float64(c) }

// RandomVelocity draws factors uniformly from [1, 1+spread) using a seeded
// source, so a given seed and call sequence always yields the same scores.
type RandomVelocity struct {
	mu     sync.Mutex
	rng    *rand.Rand
	spread float64
}

// NewRandomVelocity creates a seeded random estimator.
func NewRandomVelocity(seed int64, spread float64) *RandomVelocity {
	if spread <= 0 {
		spread = defaultRandomSpread
	}
	return &RandomVelocity{
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic placeholder signal
		spread: spread,
	}
}

// EstimateVelocity implements VelocityEstimator.
func (r *RandomVelocity) EstimateVelocity(model.ContentItem) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVelocity + r.rng.Float64()*r.spread
}

// NewEstimator builds an estimator by name.
func NewEstimator(name string, seed int64, spread float64) (VelocityEstimator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EstimatorConstant:
		return ConstantVelocity(minVelocity), nil
	case EstimatorRandom:
		if seed == 0 {
			seed = defaultRandomSeed
		}
		return NewRandomVelocity(seed, spread), nil
	default:
		return nil, fmt.Errorf("unknown velocity estimator %q", name)
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithEstimator sets the velocity estimator.
func WithEstimator(v VelocityEstimator) Option {
	return func(e *Engine) {
		if v != nil {
			e.estimator = v
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine computes trending order.
type Engine struct {
	estimator VelocityEstimator
	logger    logger.Logger
}

// New creates a trending engine with the constant estimator by default.
func New(opts ...Option) *Engine {
	e := &Engine{
		estimator: ConstantVelocity(minVelocity),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Velocity returns the estimator output floored at 1.0.
func (e *Engine) Velocity(item model.ContentItem) float64 {
	v := e.estimator.EstimateVelocity(item)
	if math.IsNaN(v) || v < minVelocity {
		metrics.RecordVelocityClamped()
		return minVelocity
	}
	return v
}

// Trend decorates copies of items with TrendingScore and stable-sorts them
// descending.
func (e *Engine) Trend(ctx context.Context, items []model.ContentItem) []model.ContentItem {
	out := make([]model.ContentItem, len(items))
	for i, item := range items {
		item.TrendingScore = float64(item.Likes) * e.Velocity(item)
		out[i] = item
	}
	slices.SortStableFunc(out, func(a, b model.ContentItem) int {
		return cmp.Compare(b.TrendingScore, a.TrendingScore)
	})
	e.logger.Debug(ctx, "trending computed", logger.Int("items", len(out)))
	return out
}
