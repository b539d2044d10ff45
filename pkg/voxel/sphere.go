package voxel

import (
	"math"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// Sphere returns a mask with every voxel within radius of center set. The
// centre may lie outside the volume; only the part of the ball inside the
// bounds is drawn.
func Sphere(shape [3]int, center [3]int, radius float64) (*Mask, error) {
	g, err := NewGrid(shape)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateRadius(radius); err != nil {
		return nil, err
	}
	addSphere(g, center, radius)
	return g.Threshold(1), nil
}

// SpheresSegment renders the segment from a to b by stacking spheres of the
// given radius on every point of its discretisation.
func SpheresSegment(shape [3]int, a, b [3]float64, radius float64) (*Mask, error) {
	g, err := NewGrid(shape)
	if err != nil {
		return nil, err
	}
	if err := AccumulateSpheres(g, a, b, radius); err != nil {
		return nil, err
	}
	return g.Threshold(1), nil
}

// AccumulateSpheres adds the spheres of one segment to g without
// thresholding, so callers can union many segments in one grid. The part of
// the segment too far outside the volume to reach it is skipped.
func AccumulateSpheres(g *Grid, a, b [3]float64, radius float64) error {
	points, err := segmentPoints(g.Shape, a, b, radius)
	if err != nil {
		return err
	}
	for _, c := range points {
		addSphere(g, c, radius)
	}
	return nil
}

// addSphere increments every voxel of g within radius of c, scanning only
// the ball's bounding box clipped to the grid.
func addSphere(g *Grid, c [3]int, radius float64) {
	r := int(math.Floor(radius))
	r2 := radius * radius

	var lo, hi [3]int
	for d := range 3 {
		lo[d] = max(c[d]-r, 0)
		hi[d] = min(c[d]+r, g.Shape[d]-1)
		if lo[d] > hi[d] {
			return
		}
	}

	for x := lo[0]; x <= hi[0]; x++ {
		dx := float64(x - c[0])
		for y := lo[1]; y <= hi[1]; y++ {
			dy := float64(y - c[1])
			rowXY := dx*dx + dy*dy
			if rowXY > r2 {
				continue
			}
			base := index(g.Shape, x, y, 0)
			for z := lo[2]; z <= hi[2]; z++ {
				dz := float64(z - c[2])
				if rowXY+dz*dz <= r2 {
					g.Counts[base+z]++
				}
			}
		}
	}
}
