package search

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights replaces the match weights. Negative weights are ignored.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.Exact >= 0 && w.Phrase >= 0 && w.Token >= 0 {
			e.weights = w
		}
	}
}

// WithSortByRelevance orders results by score instead of input order.
func WithSortByRelevance(enabled bool) Option {
	return func(e *Engine) {
		e.sortByRelevance = enabled
	}
}
