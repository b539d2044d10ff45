package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/tracetube/pkg/cache"
	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/observability"
	"github.com/matzehuels/tracetube/pkg/spline"
	"github.com/matzehuels/tracetube/pkg/trace"
	"github.com/matzehuels/tracetube/pkg/traceio"
	"github.com/matzehuels/tracetube/pkg/voxel"
)

var tracer = otel.Tracer("tracetube.pipeline")

// Runner runs the fit and tube stages against a cache of fitted trees and
// rendered masks. It keeps no per-run state, so the CLI and every API request
// share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner over c. Nil arguments select the null cache,
// the default keyer and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute runs the complete fit -> tube pipeline with caching. Every branch
// of the fitted tree is rendered as its own tube and the masks are unioned.
func (r *Runner) Execute(ctx context.Context, g *trace.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	opts.Logger = opts.Logger.With("run", runID[:8])

	ctx, span := tracer.Start(ctx, "pipeline.Execute",
		oteltrace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("trace.nodes", g.NodeCount()),
		),
	)
	defer span.End()

	result := &Result{
		RunID: runID,
		Graph: g,
		Stats: Stats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()},
	}
	if data, err := traceio.MarshalGraph(g); err == nil {
		result.TraceHash = cache.Hash(data)
	}

	fitStart := time.Now()
	tree, fitHit, err := r.FitWithCacheInfo(ctx, g, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fit failed")
		return nil, err
	}
	result.Tree = tree
	result.Stats.FitTime = time.Since(fitStart)
	result.Stats.BranchCount = tree.Len()
	result.CacheInfo.FitHit = fitHit

	opts.Logger.Info("fitted spline tree",
		"branches", tree.Len(),
		"cached", fitHit,
		"duration", result.Stats.FitTime)

	renderStart := time.Now()
	grid, err := voxel.NewGrid(opts.Shape)
	if err != nil {
		return nil, err
	}
	allHit := true
	for i, vertices := range BranchVertices(tree, opts.Samples) {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return nil, err
		}
		m, hit, err := r.TubeWithCacheInfo(ctx, vertices, opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "render failed")
			return nil, fmt.Errorf("branch %d: %w", i, err)
		}
		allHit = allHit && hit
		if err := grid.Add(m); err != nil {
			return nil, err
		}
	}
	result.Mask = grid.Threshold(1)
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.Voxels = result.Mask.Count()
	result.CacheInfo.RenderHit = allHit && tree.Len() > 0

	opts.Logger.Info("rendered tubes",
		"voxels", result.Stats.Voxels,
		"cached", result.CacheInfo.RenderHit,
		"duration", result.Stats.RenderTime)

	span.SetAttributes(
		attribute.Int("tree.branches", result.Stats.BranchCount),
		attribute.Int("mask.voxels", result.Stats.Voxels),
	)
	return result, nil
}

// FitWithCacheInfo returns the spline tree for g, from the cache when an
// entry for the same trace and fit options exists. The bool reports a hit.
func (r *Runner) FitWithCacheInfo(ctx context.Context, g *trace.Graph, opts Options) (*spline.Tree, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForFit(); err != nil {
		return nil, false, err
	}

	ctx, span := tracer.Start(ctx, "pipeline.Fit",
		oteltrace.WithAttributes(attribute.Int("trace.nodes", g.NodeCount())))
	defer span.End()

	// Traces with unencodable attributes are fitted but never cached.
	var cacheKey string
	if data, err := traceio.MarshalGraph(g); err == nil {
		cacheKey = r.Keyer.TreeKey(cache.Hash(data), opts.TreeKeyOpts())
	} else {
		opts.Logger.Debug("trace not cacheable", "err", err)
	}

	if cacheKey != "" && !opts.Refresh {
		tree, ok := lookup(ctx, r, opts, cacheKey, "tree", func(data []byte) (*spline.Tree, bool) {
			tree, err := traceio.UnmarshalTree(data)
			return tree, err == nil
		})
		span.SetAttributes(attribute.Bool("cache.hit", ok))
		if ok {
			return tree, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnFitStart(ctx, g.NodeCount())
	tree, err := Fit(g, opts)
	branches := 0
	if tree != nil {
		branches = tree.Len()
	}
	observability.Pipeline().OnFitComplete(ctx, branches, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errors.GetCode(err)))
		return nil, false, err
	}

	if cacheKey != "" {
		if data, err := traceio.MarshalTree(tree); err == nil {
			r.store(ctx, opts, cacheKey, "tree", data, cache.TTLTree)
		}
	}
	return tree, false, nil
}

// Fit is FitWithCacheInfo without the hit flag.
func (r *Runner) Fit(ctx context.Context, g *trace.Graph, opts Options) (*spline.Tree, error) {
	tree, _, err := r.FitWithCacheInfo(ctx, g, opts)
	return tree, err
}

// TubeWithCacheInfo renders one vertex sequence, from the cache when an
// entry for the same vertices and render options exists. Cached masks of a
// different shape are ignored.
func (r *Runner) TubeWithCacheInfo(ctx context.Context, vertices [][3]float64, opts Options) (*voxel.Mask, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	compression, _ := voxel.ParseCompression(opts.Compression)

	ctx, span := tracer.Start(ctx, "pipeline.Tube",
		oteltrace.WithAttributes(
			attribute.Int("tube.vertices", len(vertices)),
			attribute.String("tube.mode", opts.Render),
			attribute.Float64("tube.radius", opts.Radius),
		),
	)
	defer span.End()

	data, err := traceio.MarshalVertices(vertices)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode vertices")
	}
	cacheKey := r.Keyer.MaskKey(cache.Hash(data), opts.MaskKeyOpts())

	if !opts.Refresh {
		m, ok := lookup(ctx, r, opts, cacheKey, "mask", func(data []byte) (*voxel.Mask, bool) {
			m, err := voxel.Decode(data)
			return m, err == nil && m.Shape == opts.Shape
		})
		span.SetAttributes(attribute.Bool("cache.hit", ok))
		if ok {
			return m, true, nil
		}
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Render, max(len(vertices)-1, 0))
	m, err := Tube(ctx, vertices, opts)
	voxels := 0
	if m != nil {
		voxels = m.Count()
	}
	observability.Pipeline().OnRenderComplete(ctx, opts.Render, voxels, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errors.GetCode(err)))
		return nil, false, err
	}

	if encoded, err := voxel.Encode(m, compression); err == nil {
		r.store(ctx, opts, cacheKey, "mask", encoded, cache.TTLMask)
	}
	return m, false, nil
}

// Tube is TubeWithCacheInfo without the hit flag.
func (r *Runner) Tube(ctx context.Context, vertices [][3]float64, opts Options) (*voxel.Mask, error) {
	m, _, err := r.TubeWithCacheInfo(ctx, vertices, opts)
	return m, err
}

// lookup reads key and decodes it. Read errors and entries decode rejects
// count as misses, so a stale or corrupt entry is recomputed and overwritten.
func lookup[T any](ctx context.Context, r *Runner, opts Options, key, kind string, decode func([]byte) (T, bool)) (T, bool) {
	var zero T
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if hit {
		if v, ok := decode(data); ok {
			observability.Cache().OnCacheHit(ctx, kind)
			return v, true
		}
	}
	observability.Cache().OnCacheMiss(ctx, kind)
	return zero, false
}

// store writes to the cache. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, opts Options, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		opts.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
