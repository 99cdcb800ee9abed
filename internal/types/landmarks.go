package types

import "github.com/paulmach/orb"

// Landmark is a single feature point in source-image pixel coordinates.
// Z is a relative depth hint and may be zero.
type Landmark struct {
	X float64
	Y float64
	Z float64
}

// LandmarkSet is an ordered sequence of face perimeter/feature positions.
// It is advisory: the transform solver does not consult it, but it travels
// with a detection so a landmark-aware solver can be substituted later.
type LandmarkSet []Landmark

// Points returns the landmarks as orb points (depth dropped).
func (ls LandmarkSet) Points() orb.MultiPoint {
	pts := make(orb.MultiPoint, len(ls))
	for i, lm := range ls {
		pts[i] = orb.Point{lm.X, lm.Y}
	}
	return pts
}

// Bound returns the bounding box of the landmark set. Empty sets return the
// zero bound.
func (ls LandmarkSet) Bound() orb.Bound {
	if len(ls) == 0 {
		return orb.Bound{}
	}
	return ls.Points().Bound()
}
