package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/discovery/pkg/logger"
)

const defaultSnapshotInterval = 30 * time.Second

// Profile is the state a Snapshotter persists.
type Profile interface {
	Snapshot() map[string]float64
	Restore(scores map[string]float64)
}

// Snapshotter periodically saves a profile and restores it on startup.
type Snapshotter struct {
	store    Store
	profile  Profile
	interval time.Duration
	logger   logger.Logger
}

// NewSnapshotter creates a snapshotter of profile into store.
func NewSnapshotter(store Store, profile Profile, opts ...SnapshotterOption) *Snapshotter {
	s := &Snapshotter{
		store:    store,
		profile:  profile,
		interval: defaultSnapshotInterval,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the last snapshot into the profile. A missing snapshot is
// not an error.
func (s *Snapshotter) Restore(ctx context.Context) error {
	scores, err := s.store.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		s.logger.Info(ctx, "no profile snapshot to restore")
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore profile: %w", err)
	}
	s.profile.Restore(scores)
	s.logger.Info(ctx, "profile restored", logger.Int("categories", len(scores)))
	return nil
}

// Flush saves the current profile once.
func (s *Snapshotter) Flush(ctx context.Context) error {
	if err := s.store.Save(ctx, s.profile.Snapshot()); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Serve saves the profile every interval and once more when ctx ends.
func (s *Snapshotter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is already canceled; the final write must not be.
			if err := s.Flush(context.WithoutCancel(ctx)); err != nil {
				s.logger.Error(ctx, "final profile snapshot failed", logger.Error(err))
			}
			return ctx.Err()
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				s.logger.Error(ctx, "profile snapshot failed", logger.Error(err))
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *Snapshotter) String() string { return "profile-snapshotter" }
