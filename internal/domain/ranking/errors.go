package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrUnknownMethod = errors.New("unknown ranking method")
)
