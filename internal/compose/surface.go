// Package compose draws a transformed overlay over a background frame with
// selectable blend mode, quality-derived opacity, and feather masking.
package compose

import (
	"fmt"
	"image"

	"github.com/faceforge/faceforge/internal/types"
)

// Surface is an explicit, caller-owned drawing target. It carries the
// mutable blend-mode/opacity state that a drawing context would, so the
// compositor can prove it resets that state between calls. A surface must
// not be shared by concurrent composites; use one surface per in-flight
// request.
type Surface struct {
	img       *image.NRGBA
	blendMode string
	opacity   float64
}

// NewSurface creates a surface of the given size.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: surface size %dx%d", types.ErrSurfaceUnavailable, width, height)
	}
	return &Surface{
		img:       image.NewNRGBA(image.Rect(0, 0, width, height)),
		blendMode: types.BlendNormal,
		opacity:   1.0,
	}, nil
}

// Image exposes the surface's pixel buffer.
func (s *Surface) Image() *image.NRGBA {
	return s.img
}

// Bounds returns the surface bounds.
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// SetBlendMode sets the active blend mode. Unknown modes fall back to normal.
func (s *Surface) SetBlendMode(mode string) {
	switch mode {
	case types.BlendNormal, types.BlendOverlay, types.BlendMultiply:
		s.blendMode = mode
	default:
		s.blendMode = types.BlendNormal
	}
}

// SetOpacity sets the global draw opacity, clamped to [0,1].
func (s *Surface) SetOpacity(opacity float64) {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	s.opacity = opacity
}

// BlendMode returns the active blend mode.
func (s *Surface) BlendMode() string {
	return s.blendMode
}

// Opacity returns the active global opacity.
func (s *Surface) Opacity() float64 {
	return s.opacity
}

// Reset restores the default drawing state (normal blend, full opacity) so
// repeated composites on the same surface do not leak state.
func (s *Surface) Reset() {
	s.blendMode = types.BlendNormal
	s.opacity = 1.0
}
