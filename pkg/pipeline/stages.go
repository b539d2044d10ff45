package pipeline

import (
	"context"

	"github.com/matzehuels/tracetube/pkg/spline"
	"github.com/matzehuels/tracetube/pkg/trace"
	"github.com/matzehuels/tracetube/pkg/tube"
	"github.com/matzehuels/tracetube/pkg/voxel"
)

// Fit validates g and builds its spline tree without caching.
func Fit(g *trace.Graph, opts Options) (*spline.Tree, error) {
	return spline.BuildTree(g, opts.TreeOptions())
}

// Tube renders one vertex sequence without caching.
func Tube(ctx context.Context, vertices [][3]float64, opts Options) (*voxel.Mask, error) {
	return tube.RenderContext(ctx, opts.Shape, vertices, opts.Radius, opts.TubeOptions())
}

// BranchVertices returns one vertex sequence per tree node. With samples
// of zero the traced points are used; otherwise each curve is sampled at
// that many evenly spaced parameters.
func BranchVertices(t *spline.Tree, samples int) [][][3]float64 {
	out := make([][][3]float64, len(t.Nodes))
	for i, n := range t.Nodes {
		if samples > 0 && n.Curve != nil {
			out[i] = n.Curve.Sample(max(samples, 2))
			continue
		}
		out[i] = n.Points
	}
	return out
}
