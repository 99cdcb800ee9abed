package types

import (
	"image"
	"time"
)

// CompositeResult is the terminal output of one pipeline run. It is never
// mutated after construction. On failure Image is nil and Err carries the
// typed error; ProcessingTime records the time spent either way.
type CompositeResult struct {
	Success        bool
	Image          *image.NRGBA
	Err            error
	ProcessingTime time.Duration
}

// Failure builds a failed result with the elapsed time so far.
func Failure(err error, started time.Time) CompositeResult {
	return CompositeResult{
		Err:            err,
		ProcessingTime: time.Since(started),
	}
}

// Completed builds a successful result.
func Completed(img *image.NRGBA, started time.Time) CompositeResult {
	return CompositeResult{
		Success:        true,
		Image:          img,
		ProcessingTime: time.Since(started),
	}
}
