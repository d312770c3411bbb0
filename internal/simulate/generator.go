package simulate

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/discovery/internal/domain/model"
)

// Interaction is the wire form of one telemetry event.
type Interaction struct {
	EventID  string    `json:"event_id,omitempty"`
	Kind     string    `json:"kind"`
	Category string    `json:"category,omitempty"`
	TS       time.Time `json:"ts"`
}

var (
	//nolint:gochecknoglobals // fixed vocabulary for synthetic posts
	subjects = []string{"hiking trail", "new laptop", "pasta recipe", "live concert", "city break", "match recap", "sunrise photo"}
	//nolint:gochecknoglobals // fixed vocabulary for synthetic posts
	verbs = []string{"Loving this", "Just tried a", "Thoughts on the", "Best", "Found a", "Weekend"}
	//nolint:gochecknoglobals // kinds weighted toward views
	kinds = []model.InteractionKind{model.KindView, model.KindView, model.KindView, model.KindClick, model.KindLike}
)

const (
	maxLikes      = 500
	maxComments   = 80
	maxShares     = 40
	maxAgeHours   = 72
	undatedEvery  = 25
	followedRatio = 5
)

// generator produces synthetic catalogs and traffic. Ids are random; every
// other choice follows the seed.
type generator struct {
	rng *rand.Rand
	now time.Time
}

func newGenerator(seed uint64, now time.Time) *generator {
	return &generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: now} //nolint:gosec // synthetic data
}

// catalog creates n items spread over authors and categories. Every
// undatedEvery-th item has no timestamp.
func (g *generator) catalog(n, authors int, categories []string) []model.ContentItem {
	if authors < 1 {
		authors = 1
	}
	items := make([]model.ContentItem, n)
	for i := range items {
		author := g.rng.IntN(authors)
		item := model.ContentItem{
			ID:       uuid.NewString(),
			Author:   model.User{ID: authorID(author), Name: "Author " + strconv.Itoa(author)},
			Title:    fmt.Sprintf("Post %d", i),
			Content:  verbs[g.rng.IntN(len(verbs))] + " " + subjects[g.rng.IntN(len(subjects))],
			Likes:    g.rng.IntN(maxLikes),
			Comments: g.rng.IntN(maxComments),
			Shares:   g.rng.IntN(maxShares),
		}
		if len(categories) > 0 {
			item.Category = categories[g.rng.IntN(len(categories))]
		}
		if (i+1)%undatedEvery != 0 {
			item.CreatedAt = g.now.Add(-time.Duration(g.rng.IntN(maxAgeHours*60)) * time.Minute)
		}
		items[i] = item
	}
	return items
}

// viewer follows roughly one in followedRatio authors.
func (g *generator) viewer(authors int) model.User {
	u := model.User{ID: "viewer", Name: "Simulated Viewer"}
	for i := 0; i < authors; i++ {
		if g.rng.IntN(followedRatio) == 0 {
			u.Following = append(u.Following, authorID(i))
		}
	}
	return u
}

// interactions creates n events. With dupEvery > 0, every dupEvery-th event
// replays the event id of its predecessor.
func (g *generator) interactions(n, dupEvery int, categories []string) []Interaction {
	out := make([]Interaction, n)
	for i := range out {
		if dupEvery > 0 && i > 0 && i%dupEvery == 0 {
			out[i] = out[i-1]
			continue
		}
		in := Interaction{
			EventID: uuid.NewString(),
			Kind:    string(kinds[g.rng.IntN(len(kinds))]),
			TS:      g.now.Add(-time.Duration(g.rng.IntN(3600)) * time.Second),
		}
		if len(categories) > 0 {
			in.Category = categories[g.rng.IntN(len(categories))]
		}
		out[i] = in
	}
	return out
}

func authorID(i int) string { return "author-" + strconv.Itoa(i) }
