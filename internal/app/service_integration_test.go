package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	service "github.com/okian/discovery/internal/app"
	"github.com/okian/discovery/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_BatchIngestion(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(4), service.WithQueueSize(1000))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When a batch with a retried event is enqueued and the service stops", func() {
			batch := []model.Interaction{
				{EventID: "e1", Kind: model.KindLike, Category: "tech"},
				{EventID: "e2", Kind: model.KindClick, Category: "tech"},
				{EventID: "e1", Kind: model.KindLike, Category: "tech"},
				{EventID: "e3", Kind: model.KindView, Category: ""},
			}
			accepted, err := svc.EnqueueInteractions(ctx, batch)
			So(err, ShouldBeNil)
			So(accepted, ShouldEqual, 4)
			svc.Stop()

			Convey("Then every queued interaction is applied once", func() {
				So(svc.Affinity("tech"), ShouldAlmostEqual, 0.8, 1e-12)
				So(svc.GetStats()["started"], ShouldBeFalse)
			})
		})

		Convey("When a batch holds an unknown kind", func() {
			accepted, err := svc.EnqueueInteractions(ctx, []model.Interaction{
				{Kind: model.KindLike, Category: "a"},
				{Kind: "poke", Category: "b"},
			})
			svc.Stop()

			Convey("Then nothing is queued", func() {
				So(errors.Is(err, model.ErrInvalidInput), ShouldBeTrue)
				So(accepted, ShouldEqual, 0)
				So(svc.Affinity("a"), ShouldEqual, 0.0)
			})
		})

		Convey("When many goroutines enqueue concurrently", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			total := 0
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					batch := make([]model.Interaction, 25)
					for i := range batch {
						batch[i] = model.Interaction{
							EventID:  fmt.Sprintf("g%d-%d", g, i),
							Kind:     model.KindView,
							Category: fmt.Sprintf("cat-%d", i%5),
						}
					}
					n, _ := svc.EnqueueInteractions(ctx, batch)
					mu.Lock()
					total += n
					mu.Unlock()
				}(g)
			}
			wg.Wait()
			svc.Stop()

			Convey("Then every accepted interaction lands in the profile", func() {
				So(total, ShouldEqual, 200)
				top := svc.TopInterests(0)
				So(len(top), ShouldEqual, 5)
				for _, e := range top {
					So(e.Affinity, ShouldAlmostEqual, 0.5+40*0.01, 1e-9)
				}
			})
		})
	})

	Convey("Given a service with a tiny queue and no progress", t, func() {
		svc := service.New(service.WithWorkerCount(1), service.WithQueueSize(2))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a canceled context enqueues", func() {
			accepted, err := svc.EnqueueInteractions(ctx, []model.Interaction{{Kind: model.KindLike, Category: "a"}})

			Convey("Then nothing is accepted", func() {
				So(err, ShouldBeNil)
				So(accepted, ShouldEqual, 0)
			})
		})
	})
}
