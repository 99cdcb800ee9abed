package gallery

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/faceforge/faceforge/internal/identity"
)

// Expression ids recognized by Generate. They match identity.MouthKind
// values so an identity's preferred expression can be generated directly.
const (
	ExpressionNeutral = "neutral"
	ExpressionSmile   = "smile"
	ExpressionOpen    = "open"
)

// base skin tone before the identity tint is applied.
var baseTone = color.NRGBA{R: 214, G: 178, B: 152, A: 255}

// noiseScale controls the perlin frequency of the skin texture.
const noiseScale = 24.0

// Generate produces a deterministic procedural overlay for an identity: a
// perlin-textured, identity-tinted disc with a mouth mark chosen by the
// expression. It stands in for real gallery portraits in demos and tests.
func Generate(style identity.Style, expressionID string, size int, seed int64) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("overlay size must be positive, got %d", size)
	}

	p := perlin.NewPerlin(2.0, 2.0, 3, seed)
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	center := float64(size) / 2
	radius := center * 0.92

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-center, float64(y)-center)
			if d > radius {
				continue // transparent corners
			}

			// Noise perturbs luminance around the base tone.
			n := p.Noise2D(float64(x)/noiseScale, float64(y)/noiseScale) // ~[-1,1]
			lum := 1.0 + n*0.12

			// Darken toward the rim for a rounded look.
			rim := 1.0 - 0.35*math.Pow(d/radius, 3)

			img.SetNRGBA(x, y, color.NRGBA{
				R: scaleTone(baseTone.R, lum*rim*style.TintR),
				G: scaleTone(baseTone.G, lum*rim*style.TintG),
				B: scaleTone(baseTone.B, lum*rim*style.TintB),
				A: 255,
			})
		}
	}

	drawMouth(img, expressionID, size)
	return img, nil
}

// GenerateForIdentity generates the overlay for an identity id using its
// preferred mouth expression from the style table.
func GenerateForIdentity(identityID string, size int, seed int64) (*image.NRGBA, error) {
	style, _ := identity.Lookup(identityID)
	return Generate(style, string(style.Mouth), size, seed)
}

func scaleTone(v uint8, f float64) uint8 {
	scaled := math.Round(float64(v) * f)
	if scaled > 255 {
		return 255
	}
	if scaled < 0 {
		return 0
	}
	return uint8(scaled)
}

// drawMouth paints a simple mouth mark in the lower third of the face disc.
func drawMouth(img *image.NRGBA, expressionID string, size int) {
	mouth := color.NRGBA{R: 96, G: 48, B: 48, A: 255}
	cx := float64(size) / 2
	cy := float64(size) * 0.68
	halfWidth := float64(size) * 0.14

	setIfInside := func(x, y int) {
		if x >= 0 && y >= 0 && x < size && y < size && img.NRGBAAt(x, y).A > 0 {
			img.SetNRGBA(x, y, mouth)
		}
	}

	switch expressionID {
	case ExpressionSmile:
		// Upward arc.
		for dx := -halfWidth; dx <= halfWidth; dx++ {
			t := dx / halfWidth
			y := cy + (t*t)*float64(size)*0.04
			for th := 0; th < 3; th++ {
				setIfInside(int(cx+dx), int(y)+th)
			}
		}
	case ExpressionOpen:
		// Filled ellipse.
		rx := halfWidth * 0.8
		ry := float64(size) * 0.05
		for y := int(cy - ry); y <= int(cy+ry); y++ {
			for x := int(cx - rx); x <= int(cx+rx); x++ {
				nx := (float64(x) - cx) / rx
				ny := (float64(y) - cy) / ry
				if nx*nx+ny*ny <= 1 {
					setIfInside(x, y)
				}
			}
		}
	default:
		// Neutral: straight line.
		for dx := -halfWidth; dx <= halfWidth; dx++ {
			for th := 0; th < 3; th++ {
				setIfInside(int(cx+dx), int(cy)+th)
			}
		}
	}
}
