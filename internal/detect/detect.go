// Package detect provides the synthetic face detector. There is no model:
// the detector fabricates a plausible centered region and an elliptical
// perimeter landmark set so the compositing pipeline can be exercised
// end-to-end without real detection.
package detect

import (
	"fmt"
	"image"
	"math"

	"github.com/faceforge/faceforge/internal/types"
)

// landmarkCount is the number of perimeter points emitted per detection.
const landmarkCount = 16

// Detection is one synthetic face detection.
type Detection struct {
	Region     types.Region
	Landmarks  types.LandmarkSet
	Confidence float64
}

// Detect returns a single synthetic detection for a frame: a centered
// region covering roughly 60% of the smaller frame dimension, with
// perimeter landmarks sampled on the inscribed ellipse. Deterministic for a
// given frame size. At most one face per frame.
func Detect(frame image.Image) (Detection, error) {
	if frame == nil || frame.Bounds().Empty() {
		return Detection{}, fmt.Errorf("%w: no frame to detect on", types.ErrSurfaceUnavailable)
	}

	b := frame.Bounds()
	w := float64(b.Dx())
	h := float64(b.Dy())

	side := math.Min(w, h) * 0.6
	region := types.Region{
		X:      float64(b.Min.X) + (w-side)/2,
		Y:      float64(b.Min.Y) + (h-side)/2,
		Width:  side,
		Height: side * 1.1, // faces run slightly taller than wide
	}
	if region.Y+region.Height > float64(b.Max.Y) {
		region.Height = float64(b.Max.Y) - region.Y
	}

	return Detection{
		Region:     region,
		Landmarks:  perimeterLandmarks(region),
		Confidence: 0.92,
	}, nil
}

// perimeterLandmarks samples the region's inscribed ellipse.
func perimeterLandmarks(region types.Region) types.LandmarkSet {
	cx, cy := region.Center()
	rx := region.Width / 2
	ry := region.Height / 2

	landmarks := make(types.LandmarkSet, landmarkCount)
	for i := range landmarks {
		theta := 2 * math.Pi * float64(i) / landmarkCount
		landmarks[i] = types.Landmark{
			X: cx + rx*math.Cos(theta),
			Y: cy + ry*math.Sin(theta),
		}
	}
	return landmarks
}
