package types

import (
	"fmt"
	"image"
	"math"

	"github.com/paulmach/orb"
)

// Region is an axis-aligned rectangle marking a detected-face area in
// source-image pixel coordinates. Coordinates may be negative or exceed the
// frame bounds; consumers clip against the drawing surface.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Validate checks the size invariant. Position is unconstrained.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: region size %gx%g must be positive", ErrInvalidOverlay, r.Width, r.Height)
	}
	return nil
}

// Center returns the region's center point.
func (r Region) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Rect converts the region to an image.Rectangle, rounding outward so the
// rectangle always covers the full region.
func (r Region) Rect() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)),
		int(math.Ceil(r.Y+r.Height)),
	)
}

// Bound returns the region as an orb.Bound in pixel space.
func (r Region) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{r.X, r.Y},
		Max: orb.Point{r.X + r.Width, r.Y + r.Height},
	}
}

// RegionFromBound converts an orb.Bound back to a Region.
func RegionFromBound(b orb.Bound) Region {
	return Region{
		X:      b.Min.X(),
		Y:      b.Min.Y(),
		Width:  b.Max.X() - b.Min.X(),
		Height: b.Max.Y() - b.Min.Y(),
	}
}

// Intersects reports whether the region overlaps the given frame bounds at all.
func (r Region) Intersects(bounds image.Rectangle) bool {
	return r.Rect().Overlaps(bounds)
}
