package ranking

import (
	"time"

	"github.com/okian/discovery/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights replaces the scoring weights. Non-positive recency offset or
// gravity fall back to the defaults so decay stays strictly decreasing.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		def := DefaultWeights()
		if w.RecencyOffset <= 0 {
			w.RecencyOffset = def.RecencyOffset
		}
		if w.RecencyGravity <= 0 {
			w.RecencyGravity = def.RecencyGravity
		}
		e.weights = w
	}
}

// WithClock sets the time source used for recency decay.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithInterests wires an interest profile used by the optional interest boost.
func WithInterests(r AffinityReader) Option {
	return func(e *Engine) {
		e.interests = r
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
