package search_test

import (
	"errors"
	"testing"

	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/internal/domain/search"
	. "github.com/smartystreets/goconvey/convey"
)

func ids(items []model.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func catalog() []model.ContentItem {
	return []model.ContentItem{
		{ID: "1", Content: "Morning run by the lake", Author: model.User{ID: "a", Name: "Hiking Hannah"}},
		{ID: "2", Content: "Found a new trail today!", Author: model.User{ID: "b", Name: "Bo"}},
		{ID: "3", Content: "hiking trail", Author: model.User{ID: "c", Name: "Cy"}},
		{ID: "4", Content: "Best hiking trail gear for 2026", Author: model.User{ID: "d", Name: "Di"}},
		{ID: "5", Content: "Cooking pasta", Author: model.User{ID: "e"}},
	}
}

func TestEngine_Search(t *testing.T) {
	Convey("Given a search engine and a catalog", t, func() {
		engine := search.New()
		items := catalog()

		Convey("When the query is empty or blank", func() {
			Convey("Then the collection is returned unchanged", func() {
				So(engine.Search("", items, []string{"content"}), ShouldResemble, items)
				So(engine.Search("   ", items, []string{"content"}), ShouldResemble, items)
				So(engine.Search("", nil, nil), ShouldBeNil)
			})
		})

		Convey("When searching for a two-word phrase", func() {
			got := engine.Search("hiking trail", items, []string{"content"})

			Convey("Then token matches are kept even without the full phrase", func() {
				So(ids(got), ShouldResemble, []string{"2", "3", "4"})
			})
		})

		Convey("When searching across a nested author field", func() {
			got := engine.Search("Hiking", items, []string{"content", "author.name"})

			Convey("Then matches on either field are kept in input order", func() {
				So(ids(got), ShouldResemble, []string{"1", "3", "4"})
			})
		})

		Convey("When field paths reference missing or non-string values", func() {
			fields := []string{"author.profile.bio", "likes", "author", "nope.deeper", ""}

			Convey("Then search never fails and matches nothing", func() {
				So(func() { engine.Search("hiking", items, fields) }, ShouldNotPanic)
				So(engine.Search("hiking", items, fields), ShouldBeEmpty)
			})
		})

		Convey("When no fields are given", func() {
			Convey("Then content is searched", func() {
				So(ids(engine.Search("pasta", items, nil)), ShouldResemble, []string{"5"})
			})
		})
	})
}

func TestEngine_Score(t *testing.T) {
	Convey("Given the reference weights", t, func() {
		engine := search.New()
		items := catalog()
		fields := []string{"content"}

		Convey("Then an exact match scores exact + phrase + tokens", func() {
			So(engine.Score("Hiking Trail", items[2], fields), ShouldEqual, 100+50+10+10)
		})

		Convey("Then a containing match scores phrase + tokens", func() {
			So(engine.Score("hiking trail", items[3], fields), ShouldEqual, 50+10+10)
		})

		Convey("Then a single token match scores one token", func() {
			So(engine.Score("hiking trail", items[1], fields), ShouldEqual, 10)
		})

		Convey("Then repeated tokens count twice", func() {
			So(engine.Score("trail trail", items[1], fields), ShouldEqual, 20)
		})

		Convey("Then scores add up across fields", func() {
			So(engine.Score("hiking", items[0], []string{"content", "author.name"}), ShouldEqual, 50+10)
			So(engine.Score("hiking", items[2], []string{"content", "content"}), ShouldEqual, 2*(50+10))
		})

		Convey("Then a blank query scores zero", func() {
			So(engine.Score(" ", items[2], fields), ShouldEqual, 0)
		})
	})
}

func TestEngine_SortByRelevance(t *testing.T) {
	Convey("Given relevance sorting is enabled", t, func() {
		engine := search.New(search.WithSortByRelevance(true))
		items := catalog()

		Convey("When searching", func() {
			got := engine.Results("hiking trail", items, []string{"content"})

			Convey("Then the best match comes first", func() {
				So(engine.SortByRelevance(), ShouldBeTrue)
				So(len(got), ShouldEqual, 3)
				So(got[0].Item.ID, ShouldEqual, "3")
				So(got[1].Item.ID, ShouldEqual, "4")
				So(got[2].Item.ID, ShouldEqual, "2")
				So(got[0].Score, ShouldEqual, 170)
			})
		})

		Convey("When overriding per call", func() {
			got := engine.SearchSorted("hiking trail", items, []string{"content"}, false)
			So(ids(got), ShouldResemble, []string{"2", "3", "4"})
		})
	})

	Convey("Given custom weights", t, func() {
		engine := search.New(search.WithWeights(search.Weights{Exact: 1, Phrase: 0, Token: 0}))
		items := catalog()

		Convey("Then only exact matches survive", func() {
			So(ids(engine.Search("hiking trail", items, []string{"content"})), ShouldResemble, []string{"3"})
		})
	})
}

func TestParseOrder(t *testing.T) {
	Convey("Given sort parameters", t, func() {
		for in, want := range map[string]search.Order{
			"":          search.OrderDefault,
			"Relevance": search.OrderRelevance,
			" input ":   search.OrderInput,
		} {
			got, err := search.ParseOrder(in)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}

		_, err := search.ParseOrder("date")
		So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
	})

	Convey("Given an engine sorting by relevance", t, func() {
		engine := search.New(search.WithSortByRelevance(true))

		Convey("Then the default order defers to the engine", func() {
			So(engine.ByRelevance(search.OrderDefault), ShouldBeTrue)
			So(engine.ByRelevance(search.OrderInput), ShouldBeFalse)
			So(search.New().ByRelevance(search.OrderRelevance), ShouldBeTrue)
		})
	})
}
