package types

import "errors"

// Sentinel errors for the compositing pipeline. They are returned inside a
// CompositeResult, never panicked across the pipeline boundary; callers
// match them with errors.Is.
var (
	// ErrSurfaceUnavailable means there is no drawable target (nil or
	// zero-sized background surface).
	ErrSurfaceUnavailable = errors.New("surface unavailable")

	// ErrInvalidOverlay means the overlay (or detected region) has zero size
	// or could not be decoded.
	ErrInvalidOverlay = errors.New("invalid overlay")

	// ErrOutOfBounds means the region lies entirely outside the surface.
	// Partial overlap is clipped, not failed.
	ErrOutOfBounds = errors.New("region out of bounds")
)
