// Package harmonize adjusts composited pixels so a pasted overlay's tone
// approaches its surroundings, and implements the whole-frame identity tint.
package harmonize

import (
	"image"
	"math"

	"github.com/disintegration/gift"
	"golang.org/x/image/draw"

	"github.com/faceforge/faceforge/internal/identity"
	"github.com/faceforge/faceforge/internal/types"
)

// The fixed tone adjustment: contrast x1.05, brightness x1.02, saturation
// x0.95, expressed as gift percentages. A stylistic approximation of tone
// matching, not a statistical color transfer.
var toneFilter = gift.New(
	gift.Contrast(5),
	gift.Brightness(2),
	gift.Saturation(-5),
)

// Region applies the fixed tone adjustment in place, restricted to the
// region. The region is clipped silently to the image bounds; a region fully
// outside is a no-op. The alpha channel is untouched.
func Region(img *image.NRGBA, region types.Region) {
	if img == nil {
		return
	}
	rect := region.Rect().Intersect(img.Bounds())
	if rect.Empty() {
		return
	}

	sub, ok := img.SubImage(rect).(*image.NRGBA)
	if !ok {
		return
	}

	out := image.NewNRGBA(toneFilter.Bounds(sub.Bounds()))
	toneFilter.Draw(out, sub)
	draw.Draw(img, rect, out, out.Bounds().Min, draw.Src)
}

// Tint applies the identity's per-channel multiplicative tint to the whole
// frame in place, clamping each channel at 255. Unknown ids use the neutral
// default factors and leave the frame unchanged. No geometry is involved.
func Tint(img *image.NRGBA, identityID string) {
	if img == nil {
		return
	}
	style, _ := identity.Lookup(identityID)
	scaleChannels(img, style.TintR, style.TintG, style.TintB)
}

func scaleChannels(img *image.NRGBA, fr, fg, fb float64) {
	scale := func(v uint8, f float64) uint8 {
		scaled := math.Round(float64(v) * f)
		if scaled > 255 {
			return 255
		}
		if scaled < 0 {
			return 0
		}
		return uint8(scaled)
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = scale(img.Pix[i+0], fr)
			img.Pix[i+1] = scale(img.Pix[i+1], fg)
			img.Pix[i+2] = scale(img.Pix[i+2], fb)
			// alpha untouched
		}
	}
}
