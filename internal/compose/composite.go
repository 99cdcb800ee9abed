package compose

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/faceforge/faceforge/internal/mask"
	"github.com/faceforge/faceforge/internal/transform"
	"github.com/faceforge/faceforge/internal/types"
)

// Frame composites the overlay over the background onto the surface.
// The steps run in a fixed order: background first, then blend mode and
// opacity from the config, then the scaled overlay, then the feather mask
// (only when featherAmount > 0), and finally the surface state is reset.
// The mask clips the overlay layer only; background pixels are never erased.
func Frame(
	surface *Surface,
	background image.Image,
	overlay image.Image,
	t transform.Transform,
	m *mask.Mask,
	cfg types.BlendConfig,
) error {
	if surface == nil || surface.Bounds().Empty() {
		return fmt.Errorf("%w: no drawing surface", types.ErrSurfaceUnavailable)
	}
	if background == nil || background.Bounds().Empty() {
		return fmt.Errorf("%w: background missing", types.ErrSurfaceUnavailable)
	}
	if overlay == nil || overlay.Bounds().Empty() {
		return fmt.Errorf("%w: overlay missing or empty", types.ErrInvalidOverlay)
	}

	bounds := surface.Bounds()

	// Step 1: background, drawn unmodified.
	draw.Draw(surface.Image(), bounds, background, background.Bounds().Min, draw.Src)

	// Steps 2-3: configure draw state for this call.
	surface.SetBlendMode(cfg.BlendMode)
	surface.SetOpacity(OpacityFor(cfg.Quality))
	defer surface.Reset() // step 6

	// Step 4: scale the overlay into its destination rectangle on a
	// transparent layer of the surface's size.
	ob := overlay.Bounds()
	x, y, w, h := t.Apply(ob.Dx(), ob.Dy())
	dstRect := image.Rect(
		int(math.Round(x)),
		int(math.Round(y)),
		int(math.Round(x+w)),
		int(math.Round(y+h)),
	)

	layer := image.NewNRGBA(bounds)
	scalerFor(cfg.Quality).Scale(layer, dstRect, overlay, ob, draw.Src, nil)

	// Step 5: feather mask as a post-pass over the overlay layer.
	if m != nil && cfg.FeatherAmount > 0 {
		applyMask(layer, m)
	}

	blendLayer(surface, layer)
	return nil
}

// applyMask multiplies the layer's alpha by the mask opacity
// (destination-in), erasing overlay pixels outside the soft circle.
func applyMask(layer *image.NRGBA, m *mask.Mask) {
	bounds := layer.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := layer.PixOffset(x, y)
			a := layer.Pix[i+3]
			if a == 0 {
				continue
			}
			layer.Pix[i+3] = uint8(uint32(a) * uint32(m.AlphaAt(x, y)) / 255)
		}
	}
}

// blendLayer draws the overlay layer onto the surface using the surface's
// active blend mode and global opacity.
func blendLayer(surface *Surface, layer *image.NRGBA) {
	dst := surface.Image()
	mode := surface.BlendMode()
	opacity := surface.Opacity()

	bounds := dst.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			s := layer.NRGBAAt(x, y)
			if s.A == 0 {
				continue
			}
			sa := float64(s.A) / 255.0 * opacity
			dst.SetNRGBA(x, y, blendPixel(dst.NRGBAAt(x, y), s, sa, mode))
		}
	}
}
