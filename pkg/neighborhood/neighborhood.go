// Package neighborhood extracts centred sub-blocks from flattened
// multi-dimensional arrays, the way feature extractors crop a window around
// a traced point.
package neighborhood

import (
	"github.com/matzehuels/tracetube/pkg/errors"
)

// Subsample treats flat as a C-order array of the given shape and returns
// the block of size sub whose start on each axis is (shape[i]-sub[i])/2.
// An odd margin leaves the extra element on the high side, so a window of 4
// on an axis of 5 covers indices 0 to 3.
func Subsample[T any](flat []T, shape, sub []int) ([]T, error) {
	if err := errors.ValidateWindow(shape, sub); err != nil {
		return nil, err
	}
	if n := product(shape); len(flat) != n {
		return nil, errors.New(errors.ErrCodeInvalidSampleShape, "data has %d elements, shape %v needs %d", len(flat), shape, n)
	}

	rank := len(shape)
	start := make([]int, rank)
	strides := make([]int, rank)
	stride := 1
	for i := rank - 1; i >= 0; i-- {
		start[i] = (shape[i] - sub[i]) / 2
		strides[i] = stride
		stride *= shape[i]
	}

	// Rows along the last axis are contiguous, so copy them whole while
	// pos walks the remaining axes.
	last := rank - 1
	out := make([]T, 0, product(sub))
	pos := make([]int, last)
	for {
		off := start[last]
		for i := range last {
			off += (start[i] + pos[i]) * strides[i]
		}
		out = append(out, flat[off:off+sub[last]]...)

		i := last - 1
		for ; i >= 0; i-- {
			pos[i]++
			if pos[i] < sub[i] {
				break
			}
			pos[i] = 0
		}
		if i < 0 {
			return out, nil
		}
	}
}

// Offsets returns the start index of the centred window on each axis.
func Offsets(shape, sub []int) ([]int, error) {
	if err := errors.ValidateWindow(shape, sub); err != nil {
		return nil, err
	}
	out := make([]int, len(shape))
	for i := range shape {
		out[i] = (shape[i] - sub[i]) / 2
	}
	return out, nil
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
