package dupescan

import (
	"errors"
	"fmt"
)

// InvalidRootError reports a root path that is missing or not a directory.
// It is fatal: no traversal is attempted.
type InvalidRootError struct {
	Path   string
	Reason string
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid root directory %s: %s", e.Path, e.Reason)
}

// InvalidConfigError reports a malformed configuration value. It is
// fatal and raised before any work starts.
type InvalidConfigError struct {
	Option string
	Value  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Option, e.Reason)
}

// ErrInterrupted is returned when a scan is stopped by a shutdown
// signal. Duplicate groups fully verified before the interruption are
// still present in the returned Result.
var ErrInterrupted = errors.New("scan interrupted by shutdown")

// SkippedFile records a file dropped from the run and the reason why.
// Per-file failures are data, never errors: they must not abort the
// scan or disturb sibling files.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}
