package voxel

import (
	"math"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// CheckFinite rejects points with a NaN or infinite coordinate.
func CheckFinite(points ...[3]float64) error {
	for i, p := range points {
		for d, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New(errors.ErrCodeInvalidInput, "point %d has non-finite coordinate %d (%v)", i, d, v)
			}
		}
	}
	return nil
}

// Reach is how far outside the volume a line point may round to and still
// set a voxel inside it: ceil(radius).
func Reach(radius float64) int {
	return int(math.Ceil(radius))
}

// ClipSegment cuts the segment from a to b to the volume box grown by margin
// on every side (Liang-Barsky). ok is false when the segment misses the box.
// A segment already inside the box is returned unchanged.
func ClipSegment(shape [3]int, a, b [3]float64, margin float64) (ca, cb [3]float64, ok bool) {
	t0, t1 := 0.0, 1.0
	for d := range 3 {
		lo, hi := -margin, float64(shape[d]-1)+margin
		delta := b[d] - a[d]
		if delta == 0 {
			if a[d] < lo || a[d] > hi {
				return a, b, false
			}
			continue
		}
		u0, u1 := (lo-a[d])/delta, (hi-a[d])/delta
		if u0 > u1 {
			u0, u1 = u1, u0
		}
		t0, t1 = max(t0, u0), min(t1, u1)
		if t0 > t1 {
			return a, b, false
		}
	}

	ca, cb = a, b
	for d := range 3 {
		if t0 > 0 {
			ca[d] = a[d] + t0*(b[d]-a[d])
		}
		if t1 < 1 {
			cb[d] = a[d] + t1*(b[d]-a[d])
		}
	}
	return ca, cb, true
}

// segmentPoints validates a segment and returns the discretisation of the
// part of it that can reach the volume. Points rounding more than Reach
// outside the volume are cut off before discretising, so the point count is
// bounded by the volume size plus the radius.
func segmentPoints(shape [3]int, a, b [3]float64, radius float64) ([][3]int, error) {
	if err := errors.ValidateRadius(radius); err != nil {
		return nil, err
	}
	if err := CheckFinite(a, b); err != nil {
		return nil, err
	}
	ca, cb, ok := ClipSegment(shape, a, b, float64(Reach(radius))+0.5)
	if !ok {
		return nil, nil
	}
	return Line3(ca, cb), nil
}
