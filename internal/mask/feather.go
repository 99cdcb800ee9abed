// Package mask builds the soft-edged opacity masks used to blend overlay
// edges into the background.
package mask

import (
	"image"
	"image/color"
	"math"

	"github.com/faceforge/faceforge/internal/types"
)

// Mask is a circular radial opacity falloff centered on a region. Opacity is
// full at or inside the inner radius and falls linearly to zero at the outer
// radius. It clips the overlay to a soft circle rather than tracing the face
// silhouette.
type Mask struct {
	CX    float64
	CY    float64
	Inner float64
	Outer float64
}

// Feather builds the mask for a region. amount is clamped to [0,1]:
// 0 produces a hard-edged circle, 1 is fully soft from center to edge.
// The outer radius is half the larger region dimension.
func Feather(region types.Region, amount float64) *Mask {
	if amount < 0 {
		amount = 0
	}
	if amount > 1 {
		amount = 1
	}

	cx, cy := region.Center()
	outer := math.Max(region.Width, region.Height) / 2

	return &Mask{
		CX:    cx,
		CY:    cy,
		Inner: outer * (1 - amount),
		Outer: outer,
	}
}

// AlphaAt returns the mask opacity at a pixel.
func (m *Mask) AlphaAt(x, y int) uint8 {
	d := math.Hypot(float64(x)-m.CX, float64(y)-m.CY)

	if d <= m.Inner {
		return 255
	}
	if d >= m.Outer {
		return 0
	}
	// Linear falloff between inner and outer radius.
	t := (m.Outer - d) / (m.Outer - m.Inner)
	return uint8(math.Round(t * 255))
}

// Render rasterizes the mask over the given bounds.
func (m *Mask) Render(bounds image.Rectangle) *image.Alpha {
	out := image.NewAlpha(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetAlpha(x, y, color.Alpha{A: m.AlphaAt(x, y)})
		}
	}
	return out
}
