package spline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSpan(t *testing.T) {
	knots := []float64{0, 0, 0, 1, 2, 3, 3, 3}
	// 5 control points, degree 2.
	tests := []struct {
		u    float64
		want int
	}{
		{0, 2},
		{0.5, 2},
		{1, 3},
		{2.5, 4},
		{3, 4},
		{-1, 2},
		{4, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, findSpan(4, 2, tt.u, knots), "u=%v", tt.u)
	}
}

func TestBasisFuns_PartitionOfUnity(t *testing.T) {
	knots := []float64{0, 0, 0, 0, 1, 2.5, 4, 4, 4, 4}
	for u := 0.0; u <= 4; u += 0.125 {
		span := findSpan(5, 3, u, knots)
		var sum float64
		for _, b := range basisFuns(span, u, 3, knots) {
			assert.GreaterOrEqual(t, b, -1e-12)
			sum += b
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "u=%v", u)
	}
}

func TestCurve_LinearEval(t *testing.T) {
	c := &Curve{
		Degree:  1,
		Knots:   []float64{0, 0, 10, 10},
		Control: [][3]float64{{0, 0, 0}, {10, 0, 0}},
	}

	lo, hi := c.Domain()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 10.0, hi)

	assert.Equal(t, [3]float64{2.5, 0, 0}, c.Eval(2.5))
	assert.Equal(t, [3]float64{0, 0, 0}, c.Eval(-3), "clamped below")
	assert.Equal(t, [3]float64{10, 0, 0}, c.Eval(30), "clamped above")
	assert.InDelta(t, 10.0, c.Length(), 1e-9)

	pts := c.Sample(5)
	require.Len(t, pts, 5)
	assert.Equal(t, [3]float64{5, 0, 0}, pts[2])
	assert.Nil(t, c.Sample(0))
	assert.Len(t, c.Sample(1), 1)
}

func TestCurve_LengthOfArc(t *testing.T) {
	// Quarter circle of radius 10 sampled densely, fitted and measured.
	var pts [][3]float64
	for i := 0; i <= 40; i++ {
		a := float64(i) / 40 * math.Pi / 2
		pts = append(pts, [3]float64{10 * math.Cos(a), 10 * math.Sin(a), 0})
	}
	c, err := Fit(pts, FitOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 5*math.Pi, c.Length(), 0.05)
}
