// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MaxItems caps the collection size accepted by every engine call.
	MaxItems int `koanf:"max_items"`

	Ranking      RankingConfig      `koanf:"ranking"`
	Search       SearchConfig       `koanf:"search"`
	Trending     TrendingConfig     `koanf:"trending"`
	Interactions InteractionsConfig `koanf:"interactions"`
	Snapshot     SnapshotConfig     `koanf:"snapshot"`
	HTTP         HTTPConfig         `koanf:"http"`
}

// RankingConfig tunes the feed scoring formula.
type RankingConfig struct {
	AffinityWeight float64 `koanf:"affinity_weight"`
	BaseAffinity   float64 `koanf:"base_affinity"`
	LikeWeight     float64 `koanf:"like_weight"`
	CommentWeight  float64 `koanf:"comment_weight"`
	ShareWeight    float64 `koanf:"share_weight"`
	RecencyGravity float64 `koanf:"recency_gravity"`
	RecencyOffset  float64 `koanf:"recency_offset"`
	InterestBoost  float64 `koanf:"interest_boost"`
}

// SearchConfig tunes keyword relevance.
type SearchConfig struct {
	ExactWeight     float64 `koanf:"exact_weight"`
	PhraseWeight    float64 `koanf:"phrase_weight"`
	TokenWeight     float64 `koanf:"token_weight"`
	SortByRelevance bool    `koanf:"sort_by_relevance"`
}

// TrendingConfig selects the velocity estimator.
type TrendingConfig struct {
	// Velocity is "constant" or "random".
	Velocity       string  `koanf:"velocity"`
	VelocitySeed   int64   `koanf:"velocity_seed"`
	VelocitySpread float64 `koanf:"velocity_spread"`
}

// InteractionsConfig tunes interest learning and batch ingestion.
type InteractionsConfig struct {
	ViewWeight   float64 `koanf:"view_weight"`
	LikeWeight   float64 `koanf:"like_weight"`
	ClickWeight  float64 `koanf:"click_weight"`
	SeedAffinity float64 `koanf:"seed_affinity"`
	QueueSize    int     `koanf:"queue_size"`
	WorkerCount  int     `koanf:"worker_count"`
	DedupeSize   int     `koanf:"dedupe_size"`
}

// SnapshotConfig controls interest profile persistence. An empty Path
// disables it.
type SnapshotConfig struct {
	Path     string        `koanf:"path"`
	Interval time.Duration `koanf:"interval"`
}

// HTTPConfig controls the HTTP surface.
type HTTPConfig struct {
	// RateLimit is requests per minute per client IP. Zero disables it.
	RateLimit       int           `koanf:"rate_limit"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":9080",
		MaxItems:  10_000,
		Ranking: RankingConfig{
			AffinityWeight: 2.5,
			BaseAffinity:   1.0,
			LikeWeight:     1.0,
			CommentWeight:  2.0,
			ShareWeight:    3.5,
			RecencyGravity: 1.5,
			RecencyOffset:  2.0,
		},
		Search: SearchConfig{
			ExactWeight:  100,
			PhraseWeight: 50,
			TokenWeight:  10,
		},
		Trending: TrendingConfig{
			Velocity:       "constant",
			VelocitySeed:   42,
			VelocitySpread: 1.0,
		},
		Interactions: InteractionsConfig{
			ViewWeight:   0.01,
			LikeWeight:   0.2,
			ClickWeight:  0.1,
			SeedAffinity: 0.5,
			QueueSize:    10_000,
			WorkerCount:  runtime.NumCPU(),
			DedupeSize:   100_000,
		},
		Snapshot: SnapshotConfig{
			Interval: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			RateLimit:       600,
			CORSOrigins:     []string{"*"},
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}
