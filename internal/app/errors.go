package service

import (
	"errors"
	"fmt"

	"github.com/okian/discovery/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	// ErrTooManyItems is an ErrInvalidInput.
	ErrTooManyItems = fmt.Errorf("%w: too many items", model.ErrInvalidInput)
	ErrNotStarted   = errors.New("service not started")
)
