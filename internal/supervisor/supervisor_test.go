package supervisor_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/okian/discovery/internal/supervisor"
	"github.com/okian/discovery/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeServer struct {
	started  chan struct{}
	stop     chan struct{}
	failWith error
	shutdown atomic.Bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}), stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	close(f.started)
	if f.failWith != nil {
		return f.failWith
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.shutdown.CompareAndSwap(false, true) {
		close(f.stop)
	}
	return nil
}

type fakePipeline struct {
	starts atomic.Int32
	stops  atomic.Int32
	ctx    atomic.Value
}

func (f *fakePipeline) Start(ctx context.Context) error {
	f.starts.Add(1)
	f.ctx.Store(ctx)
	return nil
}

func (f *fakePipeline) Stop() { f.stops.Add(1) }

type fakeStats struct{ calls atomic.Int32 }

func (f *fakeStats) GetStats() map[string]interface{} {
	f.calls.Add(1)
	return map[string]interface{}{"queueLength": 7, "workerCount": 3}
}

func quietSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestNewTree(t *testing.T) {
	Convey("Given a zero tree config", t, func() {
		tree := supervisor.NewTree(quietSlog(), supervisor.TreeConfig{})

		Convey("Then defaults are applied", func() {
			So(tree.Config(), ShouldResemble, supervisor.DefaultTreeConfig())
		})
	})

	Convey("Given a nil logger", t, func() {
		So(func() { supervisor.NewTree(nil, supervisor.TreeConfig{}) }, ShouldNotPanic)
	})
}

func TestTreeLifecycle(t *testing.T) {
	Convey("Given a tree with a service in every layer", t, func() {
		tree := supervisor.NewTree(quietSlog(), supervisor.TreeConfig{ShutdownTimeout: time.Second})
		srv := newFakeServer()
		pipe := &fakePipeline{}
		stats := &fakeStats{}

		tree.AddStateService(supervisor.NewRuntimeMetricsService(time.Hour, stats))
		tree.AddPipelineService(supervisor.NewPipelineService(pipe))
		tree.AddAPIService(supervisor.NewHTTPServerService(srv, time.Second, nil))

		ctx, cancel := context.WithCancel(context.Background())
		errCh := tree.ServeBackground(ctx)

		Convey("When the tree is canceled after startup", func() {
			<-srv.started
			time.Sleep(50 * time.Millisecond)
			cancel()

			select {
			case <-errCh:
			case <-time.After(5 * time.Second):
				So("tree did not stop", ShouldBeEmpty)
			}

			Convey("Then every service ran and stopped cleanly", func() {
				So(srv.shutdown.Load(), ShouldBeTrue)
				So(pipe.starts.Load(), ShouldEqual, 1)
				So(pipe.stops.Load(), ShouldEqual, 1)
				So(stats.calls.Load(), ShouldBeGreaterThanOrEqualTo, 1)
				report, err := tree.UnstoppedServiceReport()
				So(err, ShouldBeNil)
				So(report, ShouldBeEmpty)
			})

			Convey("And the pipeline context outlived the tree context", func() {
				started, ok := pipe.ctx.Load().(context.Context)
				So(ok, ShouldBeTrue)
				So(started.Err(), ShouldBeNil)
			})
		})
	})
}

func TestHTTPServerService(t *testing.T) {
	Convey("Given a server that fails to listen", t, func() {
		srv := newFakeServer()
		srv.failWith = errors.New("address in use")
		svc := supervisor.NewHTTPServerService(srv, 0, nil)

		Convey("Then Serve returns the failure", func() {
			err := svc.Serve(context.Background())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "address in use")
			So(svc.String(), ShouldEqual, "http-server")
		})
	})
}

func TestRuntimeMetricsService(t *testing.T) {
	Convey("Given a runtime metrics updater", t, func() {
		svc := supervisor.NewRuntimeMetricsService(0, &fakeStats{})

		Convey("When sampling once", func() {
			svc.Update()

			Convey("Then the registry holds the runtime gauges", func() {
				n, err := testutil.GatherAndCount(metrics.GetRegistry(),
					"discovery_engine_system_goroutine_count",
					"discovery_engine_system_memory_usage_bytes",
					"discovery_engine_queue_size",
				)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})
	})
}
