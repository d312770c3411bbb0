package search

import (
	"fmt"
	"strings"

	"github.com/okian/discovery/internal/domain/model"
)

// Order selects how results are ordered.
type Order string

// Result orders. OrderDefault defers to the engine setting.
const (
	OrderDefault   Order = ""
	OrderRelevance Order = "relevance"
	OrderInput     Order = "input"
)

// ParseOrder accepts "", "relevance" and "input" in any case.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderDefault, OrderRelevance, OrderInput:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unknown sort %q", model.ErrInvalidInput, s)
	}
}

// ByRelevance resolves o against the engine default.
func (e *Engine) ByRelevance(o Order) bool {
	switch o {
	case OrderRelevance:
		return true
	case OrderInput:
		return false
	default:
		return e.sortByRelevance
	}
}
