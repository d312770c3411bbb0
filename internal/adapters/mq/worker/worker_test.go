package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/discovery/internal/adapters/mq/queue"
	"github.com/okian/discovery/internal/adapters/mq/worker"
	"github.com/okian/discovery/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type mockRecorder struct {
	mu      sync.Mutex
	seen    map[string]bool
	applied []model.Interaction
	fail    map[string]error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{seen: map[string]bool{}, fail: map[string]error{}}
}

func (m *mockRecorder) Record(_ context.Context, in model.Interaction) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[in.Category]; ok {
		return false, err
	}
	if in.EventID != "" && m.seen[in.EventID] {
		return true, nil
	}
	m.seen[in.EventID] = true
	m.applied = append(m.applied, in)
	return false, nil
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.applied)
}

func interaction(id, category string) model.Interaction {
	return model.Interaction{EventID: id, Kind: model.KindLike, Category: category}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading a queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		rec := newMockRecorder()
		rec.fail["broken"] = errors.New("store unavailable")
		w := worker.NewInMemoryWorker(q, rec, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When interactions are queued and the queue is closed", func() {
			q.Enqueue(ctx, interaction("e1", "tech"))
			q.Enqueue(ctx, interaction("e1", "tech"))
			q.Enqueue(ctx, interaction("e2", "broken"))
			q.Enqueue(ctx, interaction("e3", "art"))
			_ = q.Close()

			select {
			case <-w.Done():
			case <-time.After(2 * time.Second):
			}

			convey.Convey("Then each is applied once and failures do not stop the worker", func() {
				convey.So(rec.count(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		rec := newMockRecorder()
		pool := worker.NewPool(3, q, rec)
		ctx := context.Background()
		pool.Start(ctx)

		convey.Convey("When a batch with a duplicate is enqueued and the pool shuts down", func() {
			batch := []model.Interaction{
				interaction("a", "tech"), interaction("b", "tech"),
				interaction("c", "art"), interaction("a", "tech"),
			}
			convey.So(q.EnqueueAll(ctx, batch), convey.ShouldEqual, 4)
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then the queue is drained before workers exit", func() {
				stats := pool.Stats()
				convey.So(stats.Workers, convey.ShouldEqual, 3)
				convey.So(stats.Processed, convey.ShouldEqual, 3)
				convey.So(stats.Duplicates, convey.ShouldEqual, 1)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newMockRecorder())

		convey.Convey("Then at least one worker is created", func() {
			convey.So(pool.Stats().Workers, convey.ShouldBeGreaterThan, 0)
		})
	})
}
