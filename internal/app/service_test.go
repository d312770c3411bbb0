package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/discovery/internal/app"
	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/internal/domain/ranking"
	"github.com/okian/discovery/internal/domain/search"
	"github.com/okian/discovery/internal/domain/trending"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func items() []model.ContentItem {
	return []model.ContentItem{
		{ID: "old", Author: model.User{ID: "u1"}, Content: "hiking trail", Likes: 100, CreatedAt: fixedNow.Add(-48 * time.Hour)},
		{ID: "fresh", Author: model.User{ID: "u2"}, Content: "new trail", Likes: 10, CreatedAt: fixedNow.Add(-time.Hour)},
		{ID: "undated", Author: model.User{ID: "u3"}, Content: "cooking", Likes: 3, Category: "food"},
	}
}

func ids(items []model.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestService_Engines(t *testing.T) {
	Convey("Given a service with a fixed clock", t, func() {
		svc := service.New(service.WithClock(func() time.Time { return fixedNow }))
		ctx := context.Background()

		Convey("When ranking a feed", func() {
			feed, err := svc.RankFeed(ctx, items(), model.User{ID: "viewer", Following: []string{"u2"}})

			Convey("Then fresh followed content wins and undated items are reported", func() {
				So(err, ShouldBeNil)
				So(feed.Items[0].ID, ShouldEqual, "fresh")
				So(feed.Defaulted, ShouldResemble, []string{"undated"})
				for _, it := range feed.Items {
					So(it.EngagementScore, ShouldBeGreaterThan, 0)
				}
			})
		})

		Convey("When searching with each order", func() {
			inOrder, err := svc.Search(ctx, "hiking trail", items(), nil, search.OrderDefault)
			So(err, ShouldBeNil)
			byScore, err := svc.Search(ctx, "hiking trail", items()[1:2], []string{"content"}, search.OrderRelevance)
			So(err, ShouldBeNil)

			Convey("Then content is searched by default in input order", func() {
				So(ids(inOrder), ShouldResemble, []string{"old", "fresh"})
				So(ids(byScore), ShouldResemble, []string{"fresh"})
			})
		})

		Convey("When computing trending", func() {
			got, err := svc.Trending(ctx, items())

			Convey("Then items are ordered by likes", func() {
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"old", "fresh", "undated"})
			})
		})

		Convey("When an item is invalid", func() {
			bad := append(items(), model.ContentItem{ID: "", Likes: 1})
			_, err := svc.Trending(ctx, bad)

			Convey("Then an invalid-input error is returned", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service capped at two items", t, func() {
		svc := service.New(service.WithMaxItems(2))

		Convey("Then larger collections are rejected as invalid input", func() {
			_, err := svc.RankFeed(context.Background(), items(), model.User{ID: "v"})
			So(errors.Is(err, service.ErrTooManyItems), ShouldBeTrue)
			So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
		})
	})

	Convey("Given custom engine options", t, func() {
		w := ranking.DefaultWeights()
		w.AffinityWeight = 10
		svc := service.New(
			service.WithRankingWeights(w),
			service.WithSortByRelevance(true),
			service.WithVelocityEstimator(trending.VelocityFunc(func(it model.ContentItem) float64 {
				if it.ID == "undated" {
					return 100
				}
				return 1
			})),
		)
		ctx := context.Background()

		Convey("Then they reach the engines", func() {
			got, err := svc.Trending(ctx, items())
			So(err, ShouldBeNil)
			So(got[0].ID, ShouldEqual, "undated")

			found, err := svc.Search(ctx, "trail", []model.ContentItem{
				{ID: "a", Content: "a trail near a trail"},
				{ID: "b", Content: "trail"},
			}, nil, search.OrderDefault)
			So(err, ShouldBeNil)
			So(found[0].ID, ShouldEqual, "b")
		})
	})
}

func TestService_Interests(t *testing.T) {
	Convey("Given a fresh service", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When a like is recorded synchronously", func() {
			dup, err := svc.RecordInteraction(ctx, model.Interaction{Kind: model.KindLike, Category: "tech"})

			Convey("Then the affinity is learned", func() {
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
				So(svc.Affinity("tech"), ShouldAlmostEqual, 0.7, 1e-12)
				So(svc.Affinity("unseen"), ShouldEqual, 0.0)
				So(svc.TopInterests(5)[0].Category, ShouldEqual, "tech")
			})
		})

		Convey("When an unknown kind is recorded", func() {
			_, err := svc.RecordInteraction(ctx, model.Interaction{Kind: "share", Category: "tech"})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When batches are enqueued before Start", func() {
			_, err := svc.EnqueueInteractions(ctx, []model.Interaction{{Kind: model.KindLike, Category: "x"}})

			Convey("Then the service reports it is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}
