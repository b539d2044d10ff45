package spline

import (
	"math"
	"sort"
)

// Curve is a clamped B-spline in 3D.
type Curve struct {
	Degree  int          `json:"degree"`
	Knots   []float64    `json:"knots"`
	Control [][3]float64 `json:"control"`

	// Params holds the parameter value assigned to each fitted data point.
	Params []float64 `json:"params,omitempty"`
}

// Domain returns the parameter interval the curve is defined on.
func (c *Curve) Domain() (float64, float64) {
	p := c.Degree
	return c.Knots[p], c.Knots[len(c.Knots)-1-p]
}

// Eval returns the point at parameter u. Values outside the domain are
// clamped to its ends.
func (c *Curve) Eval(u float64) [3]float64 {
	lo, hi := c.Domain()
	u = math.Min(math.Max(u, lo), hi)

	span := findSpan(len(c.Control)-1, c.Degree, u, c.Knots)
	basis := basisFuns(span, u, c.Degree, c.Knots)

	var pt [3]float64
	for j, b := range basis {
		cp := c.Control[span-c.Degree+j]
		pt[0] += b * cp[0]
		pt[1] += b * cp[1]
		pt[2] += b * cp[2]
	}
	return pt
}

// Sample evaluates the curve at n parameters spaced evenly over its domain.
func (c *Curve) Sample(n int) [][3]float64 {
	if n <= 0 {
		return nil
	}
	lo, hi := c.Domain()
	if n == 1 {
		return [][3]float64{c.Eval(lo)}
	}
	out := make([][3]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = c.Eval(lo + float64(i)*step)
	}
	out[n-1] = c.Eval(hi)
	return out
}

// samplesPerSpan controls the polyline resolution used by Length.
const samplesPerSpan = 32

// Length approximates the arc length of the curve by a dense polyline.
func (c *Curve) Length() float64 {
	spans := 0
	for i := c.Degree; i < len(c.Knots)-1-c.Degree; i++ {
		if c.Knots[i+1] > c.Knots[i] {
			spans++
		}
	}
	pts := c.Sample(max(spans, 1)*samplesPerSpan + 1)
	var l float64
	for i := 1; i < len(pts); i++ {
		l += dist(pts[i-1], pts[i])
	}
	return l
}

// findSpan returns the knot span index containing u (The NURBS Book, A2.1).
// n is the index of the last control point.
func findSpan(n, p int, u float64, knots []float64) int {
	if u >= knots[n+1] {
		return n
	}
	if u <= knots[p] {
		return p
	}
	// First index in [p, n+1) whose knot exceeds u, minus one.
	i := sort.Search(n+1-p, func(k int) bool { return knots[p+k] > u })
	return p + i - 1
}

// basisFuns computes the p+1 non-zero basis functions at u in span i
// (The NURBS Book, A2.2).
func basisFuns(i int, u float64, p int, knots []float64) []float64 {
	n := make([]float64, p+1)
	left := make([]float64, p+1)
	right := make([]float64, p+1)
	n[0] = 1
	for j := 1; j <= p; j++ {
		left[j] = u - knots[i+1-j]
		right[j] = knots[i+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			temp := n[r] / (right[r+1] + left[j-r])
			n[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		n[j] = saved
	}
	return n
}

func dist(a, b [3]float64) float64 {
	dx, dy, dz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
