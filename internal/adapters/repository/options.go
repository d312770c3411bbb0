package repository

import (
	"io/fs"
	"time"

	"github.com/okian/discovery/pkg/logger"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithPerm sets the permissions of the snapshot file.
func WithPerm(perm fs.FileMode) Option {
	return func(s *FileStore) {
		if perm != 0 {
			s.perm = perm
		}
	}
}

// SnapshotterOption applies a configuration option to the Snapshotter.
type SnapshotterOption func(*Snapshotter)

// WithInterval sets how often the profile is persisted.
func WithInterval(interval time.Duration) SnapshotterOption {
	return func(s *Snapshotter) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger sets a custom logger for the snapshotter.
func WithLogger(l logger.Logger) SnapshotterOption {
	return func(s *Snapshotter) {
		if l != nil {
			s.logger = l
		}
	}
}
