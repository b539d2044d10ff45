package voxel

import "math"

// EDTSegment renders the segment from a to b as the set of voxels whose
// Euclidean distance to the discretised segment is at most radius. Line
// points outside the volume still count, so the result matches
// SpheresSegment everywhere, including along the border.
//
// The transform runs only over the box spanned by the line points and the
// voxels within reach of them.
func EDTSegment(shape [3]int, a, b [3]float64, radius float64) (*Mask, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	points, err := segmentPoints(shape, a, b, radius)
	if err != nil {
		return nil, err
	}
	m := &Mask{Shape: shape, Data: make([]uint8, volume(shape))}
	if len(points) == 0 {
		return m, nil
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for d := range 3 {
			lo[d], hi[d] = min(lo[d], p[d]), max(hi[d], p[d])
		}
	}
	reach := Reach(radius)
	var sub [3]int
	for d := range 3 {
		lo[d] = min(lo[d], max(lo[d]-reach, 0))
		hi[d] = max(hi[d], min(hi[d]+reach, shape[d]-1))
		sub[d] = hi[d] - lo[d] + 1
	}

	seeds := make([]bool, volume(sub))
	for _, p := range points {
		seeds[index(sub, p[0]-lo[0], p[1]-lo[1], p[2]-lo[2])] = true
	}
	d2 := SquaredDistance(sub, seeds)

	r2 := radius * radius
	for x := max(lo[0], 0); x <= min(hi[0], shape[0]-1); x++ {
		for y := max(lo[1], 0); y <= min(hi[1], shape[1]-1); y++ {
			for z := max(lo[2], 0); z <= min(hi[2], shape[2]-1); z++ {
				if d2[index(sub, x-lo[0], y-lo[1], z-lo[2])] <= r2 {
					m.Data[index(shape, x, y, z)] = 1
				}
			}
		}
	}
	return m, nil
}

// SquaredDistance returns, for every voxel, the squared Euclidean distance
// to the nearest seed. It runs the separable lower-envelope transform of
// Felzenszwalb and Huttenlocher along each axis in turn. Voxels with no
// seed anywhere in the volume get +Inf.
func SquaredDistance(shape [3]int, seeds []bool) []float64 {
	f := make([]float64, len(seeds))
	for i, s := range seeds {
		if !s {
			f[i] = math.Inf(1)
		}
	}

	n := max(shape[0], shape[1], shape[2])
	buf := newEnvelope(n)
	line := make([]float64, n)

	strides := [3]int{shape[1] * shape[2], shape[2], 1}
	for axis := 2; axis >= 0; axis-- {
		length, stride := shape[axis], strides[axis]
		o1, o2 := (axis+1)%3, (axis+2)%3
		for i := 0; i < shape[o1]; i++ {
			for j := 0; j < shape[o2]; j++ {
				start := i*strides[o1] + j*strides[o2]
				for k := range length {
					line[k] = f[start+k*stride]
				}
				buf.transform(line[:length])
				for k := range length {
					f[start+k*stride] = buf.out[k]
				}
			}
		}
	}
	return f
}

// envelope holds the scratch buffers of the 1D transform.
type envelope struct {
	v   []int
	z   []float64
	out []float64
}

func newEnvelope(n int) *envelope {
	return &envelope{v: make([]int, n), z: make([]float64, n+1), out: make([]float64, n)}
}

// transform computes the 1D squared distance transform of f into e.out.
// Infinite samples do not contribute parabolas.
func (e *envelope) transform(f []float64) {
	k := -1
	for q := range f {
		if math.IsInf(f[q], 1) {
			continue
		}
		if k < 0 {
			k = 0
			e.v[0] = q
			e.z[0] = math.Inf(-1)
			e.z[1] = math.Inf(1)
			continue
		}
		s := e.intersect(f, q, e.v[k])
		for s <= e.z[k] {
			k--
			s = e.intersect(f, q, e.v[k])
		}
		k++
		e.v[k] = q
		e.z[k] = s
		e.z[k+1] = math.Inf(1)
	}

	if k < 0 {
		for q := range f {
			e.out[q] = math.Inf(1)
		}
		return
	}

	k = 0
	for q := range f {
		for e.z[k+1] < float64(q) {
			k++
		}
		d := float64(q - e.v[k])
		e.out[q] = d*d + f[e.v[k]]
	}
}

// intersect returns the abscissa where the parabolas rooted at q and p meet.
func (e *envelope) intersect(f []float64, q, p int) float64 {
	fq, fp := f[q]+float64(q*q), f[p]+float64(p*p)
	return (fq - fp) / float64(2*q-2*p)
}
