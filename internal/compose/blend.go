package compose

import (
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/faceforge/faceforge/internal/types"
)

// qualityOpacity maps the quality setting to the global draw opacity.
// Unknown values fall back to the medium opacity.
var qualityOpacity = map[string]float64{
	types.QualityLow:    0.8,
	types.QualityMedium: 0.9,
	types.QualityHigh:   0.95,
}

const fallbackOpacity = 0.9

// OpacityFor returns the global opacity for a quality setting.
func OpacityFor(quality string) float64 {
	if o, ok := qualityOpacity[quality]; ok {
		return o
	}
	return fallbackOpacity
}

// scalerFor returns the overlay interpolator for a quality setting.
func scalerFor(quality string) draw.Scaler {
	switch quality {
	case types.QualityLow:
		return draw.NearestNeighbor
	case types.QualityHigh:
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}

// blendPixel combines a non-premultiplied source pixel over a destination
// pixel. sa is the effective source alpha (pixel alpha times global opacity)
// in [0,1]. For the separable modes the source color is first mixed with
// B(dst, src) by the destination alpha, then composited source-over.
func blendPixel(d, s color.NRGBA, sa float64, mode string) color.NRGBA {
	if sa <= 0 {
		return d
	}

	da := float64(d.A) / 255.0

	outA := sa + da*(1.0-sa)
	if outA == 0 {
		return color.NRGBA{}
	}

	channel := func(sv, dv uint8) uint8 {
		sc := float64(sv) / 255.0
		dc := float64(dv) / 255.0

		switch mode {
		case types.BlendMultiply:
			sc = (1-da)*sc + da*(sc*dc)
		case types.BlendOverlay:
			var b float64
			if dc <= 0.5 {
				b = 2 * sc * dc
			} else {
				b = 1 - 2*(1-sc)*(1-dc)
			}
			sc = (1-da)*sc + da*b
		}

		outPremult := sc*sa + dc*da*(1.0-sa)
		return uint8(math.Round(outPremult / outA * 255.0))
	}

	return color.NRGBA{
		R: channel(s.R, d.R),
		G: channel(s.G, d.G),
		B: channel(s.B, d.B),
		A: uint8(math.Round(outA * 255.0)),
	}
}
