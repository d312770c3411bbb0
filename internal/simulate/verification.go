package simulate

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/internal/domain/types"
)

// ErrCheckFailed marks a response that broke an ordering guarantee.
var ErrCheckFailed = errors.New("check failed")

func failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCheckFailed, fmt.Sprintf(format, args...))
}

// verifyFeed checks that the feed is a scored permutation of input sorted by
// engagement, and that every undated item was reported.
func verifyFeed(input []model.ContentItem, feed FeedResult) error {
	if len(feed.Items) != len(input) {
		return failf("feed returned %d items for %d", len(feed.Items), len(input))
	}
	if err := samePermutation(input, feed.Items); err != nil {
		return err
	}
	for i := 1; i < len(feed.Items); i++ {
		if feed.Items[i].EngagementScore > feed.Items[i-1].EngagementScore {
			return failf("feed not sorted at %d", i)
		}
	}

	var undated []string
	for _, it := range input {
		if !it.HasTimestamp() {
			undated = append(undated, it.ID)
		}
	}
	got := slices.Clone(feed.Defaulted)
	slices.Sort(got)
	slices.Sort(undated)
	if !slices.Equal(got, undated) {
		return failf("feed reported %d defaulted items, want %d", len(got), len(undated))
	}
	if len(undated) > 0 && feed.Warning == "" {
		return failf("feed omitted the missing timestamp warning")
	}
	return nil
}

// verifyTrending checks descending order and that velocity never shrinks
// likes.
func verifyTrending(input, out []model.ContentItem) error {
	if err := samePermutation(input, out); err != nil {
		return err
	}
	for i, it := range out {
		if it.TrendingScore < float64(it.Likes) {
			return failf("trending score %.3f below likes %d for %s", it.TrendingScore, it.Likes, it.ID)
		}
		if i > 0 && it.TrendingScore > out[i-1].TrendingScore {
			return failf("trending not sorted at %d", i)
		}
	}
	return nil
}

// verifySearch checks that results keep input order and that each one shares
// a token with the query. An empty query must return input unchanged.
func verifySearch(input []model.ContentItem, query string, out []model.ContentItem) error {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		if !slices.EqualFunc(input, out, func(a, b model.ContentItem) bool { return a.ID == b.ID }) {
			return failf("empty query changed the collection")
		}
		return nil
	}

	next := 0
	for _, it := range out {
		content := strings.ToLower(it.Content)
		if !slices.ContainsFunc(tokens, func(t string) bool { return strings.Contains(content, t) }) {
			return failf("search result %s does not match %q", it.ID, query)
		}
		idx := slices.IndexFunc(input[next:], func(c model.ContentItem) bool { return c.ID == it.ID })
		if idx < 0 {
			return failf("search result %s out of input order", it.ID)
		}
		next += idx + 1
	}
	return nil
}

// verifyInterests checks bounds, order and ranks of the top interests.
func verifyInterests(entries []types.InterestEntry) error {
	for i, e := range entries {
		if e.Affinity < 0 || e.Affinity > 1 {
			return failf("affinity %.3f for %s out of [0,1]", e.Affinity, e.Category)
		}
		if e.Rank != i+1 {
			return failf("interest %s has rank %d at position %d", e.Category, e.Rank, i+1)
		}
		if i > 0 && e.Affinity > entries[i-1].Affinity {
			return failf("interests not sorted at %d", i)
		}
	}
	return nil
}

func samePermutation(input, out []model.ContentItem) error {
	if len(input) != len(out) {
		return failf("got %d items for %d", len(out), len(input))
	}
	seen := make(map[string]int, len(input))
	for _, it := range input {
		seen[it.ID]++
	}
	for _, it := range out {
		if seen[it.ID] == 0 {
			return failf("unexpected item %s", it.ID)
		}
		seen[it.ID]--
	}
	return nil
}
