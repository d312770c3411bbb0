package simulate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/discovery/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
	settlePoll          = 50 * time.Millisecond
	topInterests        = 10
)

// Run seeds a catalog, submits interactions and verifies feed, search,
// trending and interest responses against a running service.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	if log == nil {
		log = logger.Nop()
	}
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting discovery simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("items", cfg.Items),
		logger.Int("interactions", cfg.Interactions),
		logger.Int("workers", cfg.Workers),
	)

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	gen := newGenerator(cfg.Seed, time.Now().UTC())
	catalog := gen.catalog(cfg.Items, cfg.Authors, cfg.Categories)
	viewer := gen.viewer(cfg.Authors)
	traffic := gen.interactions(cfg.Interactions, cfg.DuplicateEvery, cfg.Categories)
	stats.ItemsGenerated = len(catalog)
	stats.InteractionsGenerated = len(traffic)

	var baseline int64
	if before, err := client.Stats(ctx); err == nil {
		baseline, _ = handled(before)
	}
	if err := submit(ctx, client, cfg, traffic, stats, log); err != nil {
		return stats, fmt.Errorf("interaction submission failed: %w", err)
	}
	target := baseline + int64(stats.InteractionsAccepted)
	if err := settle(ctx, client, cfg.SettleTimeout, target); err != nil {
		log.Warn(ctx, "queue did not drain before verification", logger.Error(err))
	}

	checks := []struct {
		name string
		run  func() error
	}{
		{"feed", func() error {
			feed, err := client.RankFeed(ctx, catalog, viewer)
			if err != nil {
				return err
			}
			return verifyFeed(catalog, feed)
		}},
		{"trending", func() error {
			out, err := client.Trending(ctx, catalog)
			if err != nil {
				return err
			}
			return verifyTrending(catalog, out)
		}},
		{"search", func() error {
			out, err := client.Search(ctx, cfg.Query, nil, "", catalog)
			if err != nil {
				return err
			}
			return verifySearch(catalog, cfg.Query, out)
		}},
		{"search-empty", func() error {
			out, err := client.Search(ctx, "", nil, "", catalog)
			if err != nil {
				return err
			}
			return verifySearch(catalog, "", out)
		}},
		{"interests", func() error {
			top, err := client.TopInterests(ctx, topInterests)
			if err != nil {
				return err
			}
			return verifyInterests(top)
		}},
	}
	for _, c := range checks {
		if err := c.run(); err != nil {
			return stats, fmt.Errorf("%s: %w", c.name, err)
		}
		stats.ChecksPassed++
		log.Info(ctx, "check passed", logger.String("check", c.name))
	}

	if cfg.OutputFile != "" {
		if err := saveCatalog(cfg.OutputFile, catalog); err != nil {
			log.Warn(ctx, "failed to save catalog", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// submit sends traffic in batches from cfg.Workers goroutines.
func submit(ctx context.Context, client *Client, cfg *Config, traffic []Interaction, stats *Stats, log logger.Logger) error {
	size := max(cfg.BatchSize, 1)
	batches := make(chan []Interaction, max(cfg.Workers, 1)*2)

	var (
		wg        sync.WaitGroup
		submitted atomic.Int64
		accepted  atomic.Int64
		rejected  atomic.Int64
		failed    atomic.Int64
	)
	for i := 0; i < max(cfg.Workers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				res, err := client.SubmitBatch(ctx, batch)
				submitted.Add(1)
				if err != nil {
					failed.Add(1)
					log.Warn(ctx, "batch failed", logger.Error(err))
					continue
				}
				accepted.Add(int64(res.Accepted))
				rejected.Add(int64(res.Rejected))
				if cfg.Verbose {
					log.Info(ctx, "batch submitted",
						logger.String("batch_id", res.BatchID),
						logger.Int("accepted", res.Accepted),
						logger.Int("rejected", res.Rejected),
					)
				}
			}
		}()
	}

	func() {
		defer close(batches)
		for start := 0; start < len(traffic); start += size {
			end := min(start+size, len(traffic))
			select {
			case <-ctx.Done():
				return
			case batches <- traffic[start:end]:
			}
		}
	}()
	wg.Wait()

	stats.BatchesSubmitted = int(submitted.Load())
	stats.InteractionsAccepted = int(accepted.Load())
	stats.InteractionsRejected = int(rejected.Load())
	stats.BatchesFailed = int(failed.Load())
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("submission interrupted: %w", err)
	}
	if stats.BatchesSubmitted > 0 && stats.BatchesFailed == stats.BatchesSubmitted {
		return fmt.Errorf("all %d batches failed", stats.BatchesFailed)
	}
	return nil
}

// settle polls /stats until the ingestion queue is empty and the workers
// have finished with at least target interactions. A dequeued interaction
// still being applied is not counted by queueLength.
func settle(ctx context.Context, client *Client, timeout time.Duration, target int64) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()
	for {
		stats, err := client.Stats(ctx)
		if err != nil {
			return err
		}
		n, _ := stats["queueLength"].(float64)
		done, ok := handled(stats)
		if !ok || (n == 0 && done >= target) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for workers (%d of %d handled): %w", done, target, ctx.Err())
		case <-ticker.C:
		}
	}
}

// handled sums the interactions workers have applied, dropped as duplicates
// or failed. ok is false when the service reports no worker pool.
func handled(stats map[string]any) (int64, bool) {
	workers, ok := stats["workers"].(map[string]any)
	if !ok {
		return 0, false
	}
	var total float64
	for _, key := range []string{"processed", "duplicates", "failed"} {
		v, _ := workers[key].(float64)
		total += v
	}
	return int64(total), true
}

func saveCatalog(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.InteractionsAccepted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("itemsGenerated", stats.ItemsGenerated),
		logger.Int("interactionsGenerated", stats.InteractionsGenerated),
		logger.Int("batchesSubmitted", stats.BatchesSubmitted),
		logger.Int("batchesFailed", stats.BatchesFailed),
		logger.Int("interactionsAccepted", stats.InteractionsAccepted),
		logger.Int("interactionsRejected", stats.InteractionsRejected),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("interactionsPerSecond", perSecond),
	)
}
