package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/okian/discovery/pkg/logger"
	"github.com/okian/discovery/pkg/metrics"
)

const (
	defaultHTTPShutdown   = 10 * time.Second
	defaultMetricsTick    = 10 * time.Second
	httpServiceName       = "http-server"
	pipelineServiceName   = "interaction-pipeline"
	runtimeMetricsSvcName = "runtime-metrics"
)

// HTTPServer matches the lifecycle methods of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server as a supervised service.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	logger          logger.Logger
}

// NewHTTPServerService wraps server. A non-positive timeout means 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration, l logger.Logger) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultHTTPShutdown
	}
	if l == nil {
		l = logger.Nop()
	}
	return &HTTPServerService{server: server, shutdownTimeout: shutdownTimeout, logger: l}
}

// Serve implements suture.Service. http.ErrServerClosed is not an error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		h.logger.Info(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPServerService) String() string { return httpServiceName }

// Pipeline is the start/stop surface of the interaction worker pool.
type Pipeline interface {
	Start(ctx context.Context) error
	Stop()
}

// PipelineService keeps the interaction pipeline running while the tree is
// up and drains it on shutdown.
type PipelineService struct {
	pipeline Pipeline
}

// NewPipelineService wraps p.
func NewPipelineService(p Pipeline) *PipelineService {
	return &PipelineService{pipeline: p}
}

// Serve implements suture.Service. Workers outlive ctx so Stop can drain
// the queue.
func (p *PipelineService) Serve(ctx context.Context) error {
	if err := p.pipeline.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	<-ctx.Done()
	p.pipeline.Stop()
	return ctx.Err()
}

func (p *PipelineService) String() string { return pipelineServiceName }

// StatsSource reports service statistics; reading them refreshes gauges.
type StatsSource interface {
	GetStats() map[string]interface{}
}

// RuntimeMetricsService refreshes memory, goroutine and service gauges on
// a fixed interval.
type RuntimeMetricsService struct {
	interval time.Duration
	stats    StatsSource
}

// NewRuntimeMetricsService creates the updater. stats may be nil.
func NewRuntimeMetricsService(interval time.Duration, stats StatsSource) *RuntimeMetricsService {
	if interval <= 0 {
		interval = defaultMetricsTick
	}
	return &RuntimeMetricsService{interval: interval, stats: stats}
}

// Serve implements suture.Service.
func (r *RuntimeMetricsService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Update()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Update()
		}
	}
}

// Update takes one sample.
func (r *RuntimeMetricsService) Update() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if r.stats == nil {
		return
	}
	stats := r.stats.GetStats()
	if n, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(n)
	}
	if n, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(n)
	}
}

func (r *RuntimeMetricsService) String() string { return runtimeMetricsSvcName }
