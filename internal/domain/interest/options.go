package interest

import (
	"github.com/okian/discovery/internal/domain/dedupe"
	"github.com/okian/discovery/pkg/logger"
)

// TrackerOption applies a configuration option to the Tracker.
type TrackerOption func(*Tracker)

// WithWeights replaces the per-kind increments. Negative weights are ignored.
func WithWeights(w Weights) TrackerOption {
	return func(t *Tracker) {
		if w.View >= 0 && w.Like >= 0 && w.Click >= 0 {
			t.weights = w
		}
	}
}

// WithDeduper enables idempotent Record calls keyed on EventID.
func WithDeduper(d dedupe.Deduper) TrackerOption {
	return func(t *Tracker) {
		t.deduper = d
	}
}

// WithLogger sets a custom logger for the tracker.
func WithLogger(l logger.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}
