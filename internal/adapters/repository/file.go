package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/discovery/pkg/metrics"
)

// FileStore keeps the snapshot in a single file, replaced atomically.
type FileStore struct {
	path string
	perm fs.FileMode
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, perm: 0o600}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the snapshot location.
func (s *FileStore) Path() string { return s.path }

// Save writes scores to a temp file in the same directory and renames it
// over the snapshot.
func (s *FileStore) Save(_ context.Context, scores map[string]float64) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordSnapshot("write", err, float64(time.Since(start).Microseconds())/1000)
	}()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Write(tmp, scores); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err = os.Chmod(tmp.Name(), s.perm); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file.
func (s *FileStore) Load(_ context.Context) (scores map[string]float64, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordSnapshot("load", err, float64(time.Since(start).Microseconds())/1000)
	}()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return Read(f)
}
