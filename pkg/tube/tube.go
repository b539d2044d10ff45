// Package tube renders ordered vertex sequences into binary voxel masks.
//
// Each consecutive pair of vertices is rendered as a segment with one of the
// voxel package strategies, the segments are accumulated in a
// [voxel.Grid], and the grid is thresholded at 1. Because the union is
// order-independent, segments may be rendered concurrently without changing
// the result.
package tube

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/voxel"
)

// Mode selects the segment rendering strategy.
type Mode string

const (
	// ModeEDT thresholds a Euclidean distance transform of each segment.
	ModeEDT Mode = "edt"

	// ModeSpheres stacks spheres along each segment.
	ModeSpheres Mode = "spheres"
)

// Options configures Render.
type Options struct {
	// Mode defaults to ModeEDT.
	Mode Mode `json:"mode,omitempty" toml:"mode" validate:"omitempty,oneof=edt spheres"`

	// Workers is the number of segments rendered at once. Values below 2
	// render sequentially.
	Workers int `json:"workers,omitempty" toml:"workers" validate:"gte=0,lte=256"`
}

// ParseMode converts a mode name. The empty string selects ModeEDT.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeEDT:
		return ModeEDT, nil
	case ModeSpheres:
		return ModeSpheres, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown render mode %q (want edt or spheres)", s)
}

// Render draws a tube of the given radius through vertices into a volume of
// the given shape. Fewer than two vertices yield an all-zero mask. Vertices
// may lie outside the volume; segments are clipped to the part that can
// reach it. Non-finite coordinates are INVALID_INPUT.
func Render(shape [3]int, vertices [][3]float64, radius float64, opts Options) (*voxel.Mask, error) {
	return RenderContext(context.Background(), shape, vertices, radius, opts)
}

// RenderContext is Render with cancellation between segments.
func RenderContext(ctx context.Context, shape [3]int, vertices [][3]float64, radius float64, opts Options) (*voxel.Mask, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	grid, err := voxel.NewGrid(shape)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateRadius(radius); err != nil {
		return nil, err
	}
	if err := voxel.CheckFinite(vertices...); err != nil {
		return nil, err
	}
	if len(vertices) < 2 {
		return grid.Threshold(1), nil
	}

	segments := len(vertices) - 1
	if opts.Workers < 2 || segments < 2 {
		for i := range segments {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := renderInto(grid, mode, vertices[i], vertices[i+1], radius); err != nil {
				return nil, err
			}
		}
		return grid.Threshold(1), nil
	}

	// Each worker owns a grid; grids are merged once all segments are done.
	workers := min(opts.Workers, segments)
	grids := make([]*voxel.Grid, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		local, err := voxel.NewGrid(shape)
		if err != nil {
			return nil, err
		}
		grids[w] = local
		g.Go(func() error {
			for i := w; i < segments; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := renderInto(local, mode, vertices[i], vertices[i+1], radius); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, local := range grids {
		if err := grid.Merge(local); err != nil {
			return nil, err
		}
	}
	return grid.Threshold(1), nil
}

func renderInto(g *voxel.Grid, mode Mode, a, b [3]float64, radius float64) error {
	if mode == ModeSpheres {
		return voxel.AccumulateSpheres(g, a, b, radius)
	}
	m, err := voxel.EDTSegment(g.Shape, a, b, radius)
	if err != nil {
		return err
	}
	return g.Add(m)
}
