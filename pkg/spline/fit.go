package spline

import (
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// DefaultDegree is the spline degree used when FitOptions.Degree is zero.
const DefaultDegree = 3

// FitOptions configures Fit.
type FitOptions struct {
	// Degree of the spline. Reduced to len(points)-1 for short inputs.
	// Defaults to DefaultDegree.
	Degree int `json:"degree,omitempty" toml:"degree" validate:"gte=0,lte=5"`

	// ControlPoints fixes the number of control points. Zero picks
	// min(n, max(degree+1, n/2+1)) for n input points. Values outside
	// [degree+1, n] are clamped into that range.
	ControlPoints int `json:"control_points,omitempty" toml:"control_points" validate:"gte=0"`
}

// Fit fits a clamped B-spline to pts, parameterised by cumulative chord
// length. The curve passes through the first and last point. With as many
// control points as data points it interpolates every point.
func Fit(pts [][3]float64, opts FitOptions) (*Curve, error) {
	n := len(pts)
	if n < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "need at least 2 points to fit a curve, got %d", n)
	}

	params := chordParams(pts)
	if params[n-1] == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "points span zero length")
	}
	for i := 1; i < n; i++ {
		if params[i] == params[i-1] {
			return nil, errors.New(errors.ErrCodeDuplicateCoordinate, "points %d and %d coincide", i-1, i)
		}
	}

	p := opts.Degree
	if p <= 0 {
		p = DefaultDegree
	}
	p = min(p, n-1)

	m := opts.ControlPoints
	if m == 0 {
		m = min(n, max(p+1, n/2+1))
	}
	m = min(max(m, p+1), n)

	knots := placeKnots(params, m, p)
	ctrl, err := solveControl(pts, params, knots, m, p)
	if err != nil {
		return nil, err
	}
	return &Curve{Degree: p, Knots: knots, Control: ctrl, Params: params}, nil
}

// chordParams returns the cumulative chord length at each point.
func chordParams(pts [][3]float64) []float64 {
	out := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		out[i] = out[i-1] + dist(pts[i-1], pts[i])
	}
	return out
}

// placeKnots builds a clamped knot vector of length m+p+1 over params.
// Interpolation (m == n) averages p consecutive parameters; approximation
// uses the spread rule of The NURBS Book eq. 9.68-9.69 so that every knot
// span contains at least one parameter.
func placeKnots(params []float64, m, p int) []float64 {
	n := len(params)
	knots := make([]float64, m+p+1)
	lo, hi := params[0], params[n-1]
	for i := 0; i <= p; i++ {
		knots[i] = lo
		knots[m+i] = hi
	}

	if m == n {
		for j := 1; j < m-p; j++ {
			var sum float64
			for i := j; i < j+p; i++ {
				sum += params[i]
			}
			knots[j+p] = sum / float64(p)
		}
		return knots
	}

	d := float64(n) / float64(m-p)
	for j := 1; j < m-p; j++ {
		i := int(float64(j) * d)
		alpha := float64(j)*d - float64(i)
		knots[j+p] = (1-alpha)*params[i-1] + alpha*params[i]
	}
	return knots
}

// solveControl finds control points with the end points pinned to the first
// and last data points and the interior ones minimising squared error.
func solveControl(pts [][3]float64, params, knots []float64, m, p int) ([][3]float64, error) {
	n := len(pts)
	ctrl := make([][3]float64, m)
	ctrl[0], ctrl[m-1] = pts[0], pts[n-1]
	if m == 2 {
		return ctrl, nil
	}

	rows, cols := n-2, m-2
	a := mat.NewDense(rows, cols, nil)
	b := mat.NewDense(rows, 3, nil)

	for k := 1; k < n-1; k++ {
		u := params[k]
		span := findSpan(m-1, p, u, knots)
		basis := basisFuns(span, u, p, knots)

		r := pts[k]
		for j, v := range basis {
			idx := span - p + j
			switch idx {
			case 0:
				r = sub(r, scale(pts[0], v))
			case m - 1:
				r = sub(r, scale(pts[n-1], v))
			default:
				a.Set(k-1, idx-1, v)
			}
		}
		b.Set(k-1, 0, r[0])
		b.Set(k-1, 1, r[1])
		b.Set(k-1, 2, r[2])
	}

	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "least squares fit of %d control points", m)
	}
	for i := 1; i < m-1; i++ {
		ctrl[i] = [3]float64{x.At(i-1, 0), x.At(i-1, 1), x.At(i-1, 2)}
	}
	return ctrl, nil
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}
