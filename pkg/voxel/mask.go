package voxel

import (
	"github.com/matzehuels/tracetube/pkg/errors"
)

// Mask is a dense binary volume.
type Mask struct {
	Shape [3]int
	Data  []uint8
}

// NewMask returns an all-zero mask of the given shape. Every dimension must
// be positive.
func NewMask(shape [3]int) (*Mask, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	return &Mask{Shape: shape, Data: make([]uint8, volume(shape))}, nil
}

// Len returns the number of voxels.
func (m *Mask) Len() int { return len(m.Data) }

// Index returns the flat index of (x, y, z).
func (m *Mask) Index(x, y, z int) int { return index(m.Shape, x, y, z) }

// Contains reports whether p lies inside the mask bounds.
func (m *Mask) Contains(p [3]int) bool { return inBounds(m.Shape, p) }

// At returns the voxel at (x, y, z).
func (m *Mask) At(x, y, z int) uint8 { return m.Data[m.Index(x, y, z)] }

// Set sets the voxel at (x, y, z).
func (m *Mask) Set(x, y, z int, v uint8) { m.Data[m.Index(x, y, z)] = v }

// Count returns the number of set voxels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether both masks have the same shape and voxels.
func (m *Mask) Equal(o *Mask) bool {
	if m.Shape != o.Shape || len(m.Data) != len(o.Data) {
		return false
	}
	for i, v := range m.Data {
		if (v != 0) != (o.Data[i] != 0) {
			return false
		}
	}
	return true
}

// Subset reports whether every voxel set in m is also set in o.
func (m *Mask) Subset(o *Mask) bool {
	if m.Shape != o.Shape {
		return false
	}
	for i, v := range m.Data {
		if v != 0 && o.Data[i] == 0 {
			return false
		}
	}
	return true
}

// Grid is an integer accumulator with the same layout as Mask. Adding masks
// and thresholding at 1 computes their union independent of order.
type Grid struct {
	Shape  [3]int
	Counts []uint32
}

// NewGrid returns a zeroed accumulator.
func NewGrid(shape [3]int) (*Grid, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	return &Grid{Shape: shape, Counts: make([]uint32, volume(shape))}, nil
}

// Add accumulates a mask of the same shape.
func (g *Grid) Add(m *Mask) error {
	if m.Shape != g.Shape {
		return errors.New(errors.ErrCodeInvalidSampleShape, "cannot add mask of shape %v to grid of shape %v", m.Shape, g.Shape)
	}
	for i, v := range m.Data {
		if v != 0 {
			g.Counts[i]++
		}
	}
	return nil
}

// Merge accumulates another grid of the same shape.
func (g *Grid) Merge(o *Grid) error {
	if o.Shape != g.Shape {
		return errors.New(errors.ErrCodeInvalidSampleShape, "cannot merge grid of shape %v into %v", o.Shape, g.Shape)
	}
	for i, v := range o.Counts {
		g.Counts[i] += v
	}
	return nil
}

// Threshold returns a mask with 1 wherever the count is at least atLeast.
func (g *Grid) Threshold(atLeast uint32) *Mask {
	m := &Mask{Shape: g.Shape, Data: make([]uint8, len(g.Counts))}
	for i, c := range g.Counts {
		if c >= atLeast {
			m.Data[i] = 1
		}
	}
	return m
}

func checkShape(shape [3]int) error {
	return errors.ValidateShape(shape[:])
}

func volume(shape [3]int) int { return shape[0] * shape[1] * shape[2] }

func index(shape [3]int, x, y, z int) int {
	return (x*shape[1]+y)*shape[2] + z
}

func inBounds(shape [3]int, p [3]int) bool {
	return p[0] >= 0 && p[0] < shape[0] &&
		p[1] >= 0 && p[1] < shape[1] &&
		p[2] >= 0 && p[2] < shape[2]
}
