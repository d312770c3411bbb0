package interest

import (
	"context"
	"fmt"

	"github.com/okian/discovery/internal/domain/dedupe"
	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/pkg/logger"
	"github.com/okian/discovery/pkg/metrics"
)

// Weights are the affinity increments per interaction kind.
type Weights struct {
	View  float64
	Like  float64
	Click float64
}

// DefaultWeights returns like 0.2, click 0.1 and view 0.01.
func DefaultWeights() Weights {
	return Weights{View: 0.01, Like: 0.2, Click: 0.1}
}

func (w Weights) of(kind model.InteractionKind) (float64, bool) {
	switch kind {
	case model.KindView:
		return w.View, true
	case model.KindLike:
		return w.Like, true
	case model.KindClick:
		return w.Click, true
	default:
		return 0, false
	}
}

// Tracker applies interactions to a Store.
type Tracker struct {
	store   *Store
	weights Weights
	deduper dedupe.Deduper
	logger  logger.Logger
}

// NewTracker creates a tracker writing to store.
func NewTracker(store *Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:   store,
		weights: DefaultWeights(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Store returns the profile the tracker writes to.
func (t *Tracker) Store() *Store { return t.store }

// RecordInteraction adjusts the affinity of category by the weight of kind.
// An empty category is ignored.
func (t *Tracker) RecordInteraction(ctx context.Context, kind model.InteractionKind, category string) error {
	weight, ok := t.weights.of(kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if category == "" {
		return nil
	}

	affinity := t.store.Apply(category, weight)
	metrics.RecordInteraction(string(kind))
	metrics.UpdateProfileCategories(t.store.Len())
	t.logger.Debug(ctx, "interest updated",
		logger.String("kind", string(kind)),
		logger.String("category", category),
		logger.Float64("affinity", affinity))
	return nil
}

// Record applies an interaction once per EventID. Interactions without an
// id are always applied. It reports whether the interaction was a duplicate.
func (t *Tracker) Record(ctx context.Context, in model.Interaction) (bool, error) {
	if _, ok := t.weights.of(in.Kind); !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidKind, in.Kind)
	}
	if in.EventID != "" && t.deduper != nil && t.deduper.SeenAndRecord(ctx, in.EventID) {
		metrics.RecordInteractionDuplicate()
		t.logger.Debug(ctx, "duplicate interaction dropped", logger.String("event_id", in.EventID))
		return true, nil
	}
	return false, t.RecordInteraction(ctx, in.Kind, in.Category)
}
