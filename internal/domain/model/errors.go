package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for model validation errors.
var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidKind is an ErrInvalidInput.
	ErrInvalidKind = fmt.Errorf("%w: interaction kind", ErrInvalidInput)
)
