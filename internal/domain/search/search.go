// Package search filters content collections against a free-text query.
//
// Every requested field path is resolved on each item; only string leaves
// take part in scoring. An item is kept when its total score is positive.
// Results keep input order unless relevance sorting is enabled.
package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/discovery/internal/domain/fieldpath"
	"github.com/okian/discovery/internal/domain/model"
)

// Default scoring constants.
const (
	defaultExactWeight  = 100
	defaultPhraseWeight = 50
	defaultTokenWeight  = 10
)

// DefaultFields is used when a caller names no fields.
var DefaultFields = []string{"content"}

// Weights holds the per-match scores.
type Weights struct {
	Exact  float64
	Phrase float64
	Token  float64
}

// DefaultWeights returns the reference weights.
func DefaultWeights() Weights {
	return Weights{Exact: defaultExactWeight, Phrase: defaultPhraseWeight, Token: defaultTokenWeight}
}

// Match pairs an item with its relevance score.
type Match struct {
	Item  model.ContentItem
	Score float64
}

// Engine runs searches.
type Engine struct {
	weights         Weights
	sortByRelevance bool
}

// New creates a search engine.
func New(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SortByRelevance reports whether results are ordered by score.
func (e *Engine) SortByRelevance() bool { return e.sortByRelevance }

// query is a normalized search query.
type query struct {
	full   string
	tokens []string
}

func parse(q string) query {
	full := strings.ToLower(strings.TrimSpace(q))
	return query{full: full, tokens: strings.Fields(full)}
}

// Search returns the items matching q on any of fields. An empty query
// returns items unchanged.
func (e *Engine) Search(q string, items []model.ContentItem, fields []string) []model.ContentItem {
	return e.SearchSorted(q, items, fields, e.sortByRelevance)
}

// SearchSorted is Search with an explicit ordering choice for this call.
func (e *Engine) SearchSorted(q string, items []model.ContentItem, fields []string, byRelevance bool) []model.ContentItem {
	if strings.TrimSpace(q) == "" {
		return items
	}
	matches := e.results(parse(q), items, fields, byRelevance)
	out := make([]model.ContentItem, len(matches))
	for i, m := range matches {
		out[i] = m.Item
	}
	return out
}

// Results returns scored matches using the engine's default ordering. An
// empty query matches nothing here since there is nothing to score.
func (e *Engine) Results(q string, items []model.ContentItem, fields []string) []Match {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	return e.results(parse(q), items, fields, e.sortByRelevance)
}

// Score returns the relevance of item for q over fields.
func (e *Engine) Score(q string, item model.ContentItem, fields []string) float64 {
	pq := parse(q)
	if pq.full == "" {
		return 0
	}
	return e.score(pq, item.Document(), fields)
}

func (e *Engine) results(pq query, items []model.ContentItem, fields []string, byRelevance bool) []Match {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	var out []Match
	for _, item := range items {
		if s := e.score(pq, item.Document(), fields); s > 0 {
			out = append(out, Match{Item: item, Score: s})
		}
	}
	if byRelevance {
		slices.SortStableFunc(out, func(a, b Match) int {
			return cmp.Compare(b.Score, a.Score)
		})
	}
	return out
}

func (e *Engine) score(pq query, doc fieldpath.Value, fields []string) float64 {
	var total float64
	for _, path := range fields {
		text, ok := fieldpath.Resolve(doc, path).Text()
		if !ok {
			continue
		}
		value := strings.ToLower(text)
		if value == pq.full {
			total += e.weights.Exact
		}
		if strings.Contains(value, pq.full) {
			total += e.weights.Phrase
		}
		for _, tok := range pq.tokens {
			if strings.Contains(value, tok) {
				total += e.weights.Token
			}
		}
	}
	return total
}
