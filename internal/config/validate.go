package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/discovery/internal/domain/trending"
)

// Validate rejects values the engines cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(strings.TrimSpace(c.Addr) != "", "addr must not be empty")
	check(c.MaxItems >= 1, "max_items must be at least 1, got %d", c.MaxItems)
	check(c.LogFormat == "" || c.LogFormat == "text" || c.LogFormat == "json",
		"log_format must be text or json, got %q", c.LogFormat)

	r := c.Ranking
	check(r.RecencyOffset > 0, "ranking.recency_offset must be positive")
	check(r.RecencyGravity > 0, "ranking.recency_gravity must be positive")
	for name, v := range map[string]float64{
		"ranking.affinity_weight":   r.AffinityWeight,
		"ranking.base_affinity":     r.BaseAffinity,
		"ranking.like_weight":       r.LikeWeight,
		"ranking.comment_weight":    r.CommentWeight,
		"ranking.share_weight":      r.ShareWeight,
		"ranking.interest_boost":    r.InterestBoost,
		"search.exact_weight":       c.Search.ExactWeight,
		"search.phrase_weight":      c.Search.PhraseWeight,
		"search.token_weight":       c.Search.TokenWeight,
		"interactions.view_weight":  c.Interactions.ViewWeight,
		"interactions.like_weight":  c.Interactions.LikeWeight,
		"interactions.click_weight": c.Interactions.ClickWeight,
	} {
		check(v >= 0, "%s must not be negative, got %v", name, v)
	}

	check(c.Interactions.SeedAffinity >= 0 && c.Interactions.SeedAffinity <= 1,
		"interactions.seed_affinity must be within [0,1]")
	check(c.Interactions.QueueSize >= 1, "interactions.queue_size must be at least 1")

	switch strings.ToLower(c.Trending.Velocity) {
	case "", trending.EstimatorConstant, trending.EstimatorRandom:
	default:
		check(false, "trending.velocity must be %q or %q, got %q",
			trending.EstimatorConstant, trending.EstimatorRandom, c.Trending.Velocity)
	}

	check(c.Snapshot.Path == "" || c.Snapshot.Interval > 0, "snapshot.interval must be positive")
	check(c.HTTP.RateLimit >= 0, "http.rate_limit must not be negative")

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
