package repository

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrNotFound       = errors.New("snapshot not found")
	ErrSnapshotFormat = errors.New("malformed snapshot")
)
