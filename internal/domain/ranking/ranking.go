// Package ranking scores content items for a viewer's feed.
//
// score = affinity(author, viewer) * engagement(item) * decay(age)
//
// The engine is a pure function of its inputs and the injected clock. Items
// without a creation timestamp are treated as created "now"; callers should
// always supply one and the engine logs every defaulted item.
package ranking

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/pkg/logger"
)

// Default scoring constants.
const (
	defaultAffinityWeight = 2.5
	defaultBaseAffinity   = 1.0
	defaultLikeWeight     = 1.0
	defaultCommentWeight  = 2.0
	defaultShareWeight    = 3.5
	defaultRecencyGravity = 1.5
	defaultRecencyOffset  = 2.0
)

// Weights holds every tunable of the scoring formula.
type Weights struct {
	AffinityWeight float64
	BaseAffinity   float64
	LikeWeight     float64
	CommentWeight  float64
	ShareWeight    float64
	RecencyGravity float64
	RecencyOffset  float64
	// InterestBoost scales items by the viewer's category affinity. Zero
	// disables it and leaves the formula untouched.
	InterestBoost float64
}

// DefaultWeights returns the reference weights.
func DefaultWeights() Weights {
	return Weights{
		AffinityWeight: defaultAffinityWeight,
		BaseAffinity:   defaultBaseAffinity,
		LikeWeight:     defaultLikeWeight,
		CommentWeight:  defaultCommentWeight,
		ShareWeight:    defaultShareWeight,
		RecencyGravity: defaultRecencyGravity,
		RecencyOffset:  defaultRecencyOffset,
	}
}

// AffinityReader reads category affinities from an interest profile.
type AffinityReader interface {
	GetAffinity(category string) float64
}

// Engine ranks feeds.
type Engine struct {
	weights   Weights
	now       func() time.Time
	interests AffinityReader
	logger    logger.Logger
}

// New creates a feed ranking engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		weights: DefaultWeights(),
		now:     time.Now,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the active weights.
func (e *Engine) Weights() Weights { return e.weights }

// Affinity returns AffinityWeight when viewer follows author, BaseAffinity
// otherwise. Own content is never boosted.
func (e *Engine) Affinity(author, viewer model.User) float64 {
	if author.ID != viewer.ID && viewer.Follows(author.ID) {
		return e.weights.AffinityWeight
	}
	return e.weights.BaseAffinity
}

// EngagementWeight is the weighted sum of likes, comments and shares.
func (e *Engine) EngagementWeight(item model.ContentItem) float64 {
	return float64(item.Likes)*e.weights.LikeWeight +
		float64(item.Comments)*e.weights.CommentWeight +
		float64(item.Shares)*e.weights.ShareWeight
}

// RecencyDecay returns 1 / (hours + offset)^gravity. Future timestamps count
// as zero hours old.
func (e *Engine) RecencyDecay(createdAt, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return 1 / math.Pow(hours+e.weights.RecencyOffset, e.weights.RecencyGravity)
}

// ScoreItem scores a single item for viewer.
func (e *Engine) ScoreItem(ctx context.Context, item model.ContentItem, viewer model.User) float64 {
	score, defaulted := e.score(item, viewer, e.now())
	if defaulted {
		e.logger.Warn(ctx, "item has no creation timestamp; treating as now",
			logger.String("item_id", item.ID),
		)
	}
	return score
}

// Feed is the outcome of ranking a collection.
type Feed struct {
	// Items are decorated copies sorted by EngagementScore, descending.
	Items []model.ContentItem
	// Defaulted lists ids of items ranked without a timestamp.
	Defaulted []string
}

// Rank scores every item against a single clock reading and sorts the copies.
// Ties keep their input order.
func (e *Engine) Rank(ctx context.Context, items []model.ContentItem, viewer model.User) Feed {
	now := e.now()
	out := make([]model.ContentItem, len(items))
	var defaulted []string
	for i, item := range items {
		score, missing := e.score(item, viewer, now)
		if missing {
			item.CreatedAt = now
			defaulted = append(defaulted, item.ID)
		}
		item.EngagementScore = score
		out[i] = item
	}
	SortByScore(out)

	if len(defaulted) > 0 {
		e.logger.Warn(ctx, "ranked items without creation timestamp; defaulted to now",
			logger.Int("count", len(defaulted)),
			logger.Any("item_ids", defaulted),
		)
	}
	return Feed{Items: out, Defaulted: defaulted}
}

// RankFeed returns items sorted by relevance to viewer.
func (e *Engine) RankFeed(ctx context.Context, items []model.ContentItem, viewer model.User) []model.ContentItem {
	return e.Rank(ctx, items, viewer).Items
}

// SortByScore stable-sorts items by EngagementScore, descending.
func SortByScore(items []model.ContentItem) {
	slices.SortStableFunc(items, func(a, b model.ContentItem) int {
		return cmp.Compare(b.EngagementScore, a.EngagementScore)
	})
}

// score computes the formula. Affinity is applied last so a followed author
// scores exactly AffinityWeight/BaseAffinity times an unfollowed one.
func (e *Engine) score(item model.ContentItem, viewer model.User, now time.Time) (float64, bool) {
	createdAt, defaulted := item.CreatedAt, false
	if !item.HasTimestamp() {
		createdAt, defaulted = now, true
	}

	base := e.EngagementWeight(item) * e.RecencyDecay(createdAt, now)
	score := e.Affinity(item.Author, viewer) * base

	if e.weights.InterestBoost > 0 && e.interests != nil && item.Category != "" {
		score *= 1 + e.weights.InterestBoost*e.interests.GetAffinity(item.Category)
	}
	return score, defaulted
}
