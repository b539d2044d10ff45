package voxel

import (
	"math"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// Line discretises the segment from a to b in any number of dimensions. It
// returns ceil(max|b-a|)+1 points spaced evenly along the segment and
// rounded half up to integers, so both endpoints are included and
// consecutive points differ by at most one along every axis.
func Line(a, b []float64) ([][]int, error) {
	if len(a) != len(b) {
		return nil, errors.New(errors.ErrCodeInvalidSampleShape, "line endpoints have ranks %d and %d", len(a), len(b))
	}
	if len(a) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSampleShape, "line endpoints have rank 0")
	}
	for d := range a {
		if !finite(a[d]) || !finite(b[d]) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "line endpoint coordinate %d is not finite", d)
		}
	}

	n := steps(a, b)
	out := make([][]int, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		p := make([]int, len(a))
		for d := range a {
			p[d] = roundHalfUp(a[d] + t*(b[d]-a[d]))
		}
		out[i] = p
	}
	return out, nil
}

// Line3 is Line specialised to 3D points. It returns no points when an
// endpoint is not finite. The point count grows with the segment length;
// renderers clip segments with ClipSegment first.
func Line3(a, b [3]float64) [][3]int {
	n := steps(a[:], b[:])
	out := make([][3]int, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		for d := range 3 {
			out[i][d] = roundHalfUp(a[d] + t*(b[d]-a[d]))
		}
	}
	return out
}

func steps(a, b []float64) int {
	var span float64
	for d := range a {
		span = math.Max(span, math.Abs(b[d]-a[d]))
	}
	if !finite(span) {
		return 0
	}
	return int(math.Ceil(span)) + 1
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
