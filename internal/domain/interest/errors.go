package interest

import "github.com/okian/discovery/internal/domain/model"

// ErrInvalidKind is returned for interaction kinds other than view, like and click.
var ErrInvalidKind = model.ErrInvalidKind
