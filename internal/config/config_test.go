package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/discovery/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the reference defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.MaxItems, convey.ShouldEqual, 10_000)
			convey.So(cfg.Ranking.AffinityWeight, convey.ShouldEqual, 2.5)
			convey.So(cfg.Ranking.RecencyGravity, convey.ShouldEqual, 1.5)
			convey.So(cfg.Ranking.RecencyOffset, convey.ShouldEqual, 2.0)
			convey.So(cfg.Ranking.InterestBoost, convey.ShouldEqual, 0)
			convey.So(cfg.Search.ExactWeight, convey.ShouldEqual, 100)
			convey.So(cfg.Trending.Velocity, convey.ShouldEqual, "constant")
			convey.So(cfg.Interactions.LikeWeight, convey.ShouldEqual, 0.2)
			convey.So(cfg.Interactions.SeedAffinity, convey.ShouldEqual, 0.5)
			convey.So(cfg.Snapshot.Path, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with bad values", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":           func(c *config.Config) { c.Addr = " " },
			"zero max items":       func(c *config.Config) { c.MaxItems = 0 },
			"zero recency offset":  func(c *config.Config) { c.Ranking.RecencyOffset = 0 },
			"negative like weight": func(c *config.Config) { c.Ranking.LikeWeight = -1 },
			"negative token":       func(c *config.Config) { c.Search.TokenWeight = -1 },
			"seed above one":       func(c *config.Config) { c.Interactions.SeedAffinity = 1.5 },
			"unknown velocity":     func(c *config.Config) { c.Trending.Velocity = "ml" },
			"zero snapshot period": func(c *config.Config) { c.Snapshot = config.SnapshotConfig{Path: "p.tsv"} },
			"json-ish log format":  func(c *config.Config) { c.LogFormat = "yaml" },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)

			convey.Convey("Then "+name+" is rejected as invalid config", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then a snapshot path with an interval is accepted", func() {
			cfg := config.New()
			cfg.Snapshot = config.SnapshotConfig{Path: "p.tsv", Interval: time.Second}
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
