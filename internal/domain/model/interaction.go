package model

import (
	"fmt"
	"strings"
	"time"
)

// InteractionKind classifies a telemetry event.
type InteractionKind string

// Supported interaction kinds.
const (
	KindView  InteractionKind = "view"
	KindLike  InteractionKind = "like"
	KindClick InteractionKind = "click"
)

// ParseInteractionKind accepts view, like or click in any case.
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch k := InteractionKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindView, KindLike, KindClick:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Interaction is one view/like/click observed by a UI collaborator.
type Interaction struct {
	EventID  string          // optional id for idempotency
	Kind     InteractionKind // view, like or click
	Category string          // topic tag; empty means nothing to learn
	TS       time.Time       // when the interaction happened
}
