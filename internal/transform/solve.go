// Package transform computes the placement of a target overlay over a
// detected region.
package transform

import (
	"fmt"

	"github.com/faceforge/faceforge/internal/types"
)

// anisotropy is how much of the per-axis (non-uniform) scale is blended back
// onto the uniform base scale. The uniform base keeps the overlay's aspect
// recognizable; the blend lets it loosely fill a non-square region.
const anisotropy = 0.3

// Transform places an overlay of known size onto a region: scale each axis,
// then translate so the scaled overlay is centered on the region's center.
type Transform struct {
	ScaleX float64
	ScaleY float64
	TX     float64
	TY     float64
}

// Solve computes the overlay placement for a region. The overlay must have a
// positive size; zero-size overlays fail with ErrInvalidOverlay rather than
// degenerating to an invisible composite.
func Solve(region types.Region, overlayW, overlayH int) (Transform, error) {
	if err := region.Validate(); err != nil {
		return Transform{}, err
	}
	if overlayW <= 0 || overlayH <= 0 {
		return Transform{}, fmt.Errorf("%w: overlay size %dx%d must be positive", types.ErrInvalidOverlay, overlayW, overlayH)
	}

	sx := region.Width / float64(overlayW)
	sy := region.Height / float64(overlayH)

	uniform := sx
	if sy < uniform {
		uniform = sy
	}

	finalX := uniform + (sx-uniform)*anisotropy
	finalY := uniform + (sy-uniform)*anisotropy

	scaledW := float64(overlayW) * finalX
	scaledH := float64(overlayH) * finalY

	return Transform{
		ScaleX: finalX,
		ScaleY: finalY,
		TX:     region.X - (scaledW-region.Width)/2,
		TY:     region.Y - (scaledH-region.Height)/2,
	}, nil
}

// Apply returns the destination rectangle of an overlay of the given size
// under the transform, as floating-point extents.
func (t Transform) Apply(overlayW, overlayH int) (x, y, w, h float64) {
	return t.TX, t.TY, float64(overlayW) * t.ScaleX, float64(overlayH) * t.ScaleY
}
