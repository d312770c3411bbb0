// Package interest keeps the adaptive interest profile and turns interaction
// telemetry into affinity updates.
package interest

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/okian/discovery/internal/domain/types"
)

const (
	// DefaultSeedAffinity is the starting affinity of a category on first touch.
	DefaultSeedAffinity = 0.5

	minAffinity = 0.0
	maxAffinity = 1.0
)

// Store maps category to affinity in [0,1]. The zero value is not usable;
// construct with NewStore.
type Store struct {
	mu     sync.RWMutex
	scores map[string]float64
	seed   float64
}

// StoreOption applies a configuration option to the Store.
type StoreOption func(*Store)

// WithSeedAffinity sets the affinity a category starts from. Values outside
// [0,1] are ignored.
func WithSeedAffinity(seed float64) StoreOption {
	return func(s *Store) {
		if seed >= minAffinity && seed <= maxAffinity {
			s.seed = seed
		}
	}
}

// NewStore creates an empty profile.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		scores: make(map[string]float64),
		seed:   DefaultSeedAffinity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply adds weight to category and returns the new affinity. An unseen
// category starts from the seed affinity.
func (s *Store) Apply(category string, weight float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.scores[category]
	if !ok {
		current = s.seed
	}
	next := clamp(current + weight)
	s.scores[category] = next
	return next
}

// GetAffinity returns the affinity for category, 0 when never touched.
func (s *Store) GetAffinity(category string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[category]
}

// Len returns the number of tracked categories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}

// Snapshot returns a copy of the profile.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.scores)
}

// Restore replaces the profile with scores, clamping every value.
func (s *Store) Restore(scores map[string]float64) {
	next := make(map[string]float64, len(scores))
	for category, v := range scores {
		next[category] = clamp(v)
	}
	s.mu.Lock()
	s.scores = next
	s.mu.Unlock()
}

// Top returns up to n categories ordered by affinity, ties by name.
// n <= 0 returns every category.
func (s *Store) Top(n int) []types.InterestEntry {
	snap := s.Snapshot()
	entries := make([]types.InterestEntry, 0, len(snap))
	for category, affinity := range snap {
		entries = append(entries, types.InterestEntry{Category: category, Affinity: affinity})
	}
	slices.SortFunc(entries, func(a, b types.InterestEntry) int {
		if c := cmp.Compare(b.Affinity, a.Affinity); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func clamp(v float64) float64 {
	return min(max(v, minAffinity), maxAffinity)
}
