package service

import "errors"

// ErrNotStarted is returned when a Service method is called before Start.
var ErrNotStarted = errors.New("service not started")
