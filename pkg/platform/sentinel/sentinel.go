// Package sentinel holds infrastructure errors shared across packages.
package sentinel

import "errors"

// ErrUnavailable marks a record source or sink that cannot be reached or
// read. Callers wrap it with detail; the directory maps it to a retryable
// "service unavailable" failure.
var ErrUnavailable = errors.New("unavailable")
