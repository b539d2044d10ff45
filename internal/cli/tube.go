package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracetube/pkg/pipeline"
	"github.com/matzehuels/tracetube/pkg/traceio"
	"github.com/matzehuels/tracetube/pkg/voxel"
)

type tubeFlags struct {
	output  string
	shape   string
	trace   bool
	tiffDir string
	noCache bool
}

// tubeCommand renders a vertex sequence, or a whole trace, into a voxel mask.
func (c *CLI) tubeCommand() *cobra.Command {
	var (
		f    tubeFlags
		opts pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "tube [vertices.json | trace.json]",
		Short: "Render a tube of spheres along a path into a voxel mask",
		Long: `Render a tube of spheres along a path into a voxel mask.

The input is a JSON array of [x, y, z] vertices. Every voxel within --radius of
a segment between consecutive vertices is set. With --trace the input is a
trace document instead: it is fitted branch by branch and every branch is
rendered into the same mask.

The mask is written in the tracetube mask format (default: <input>.mask).
--tiff-dir additionally writes one 8-bit TIFF per z slice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.pipelineOptions()
			flags := cmd.Flags()
			if flags.Changed("radius") {
				base.Radius = opts.Radius
			}
			if flags.Changed("render") {
				base.Render = opts.Render
			}
			if flags.Changed("workers") {
				base.Workers = opts.Workers
			}
			if flags.Changed("compression") {
				base.Compression = opts.Compression
			}
			if flags.Changed("mode") {
				base.Mode = opts.Mode
			}
			base.Root = opts.Root
			base.Samples = opts.Samples
			base.Refresh = opts.Refresh

			shape, err := parseShape(f.shape)
			if err != nil {
				return err
			}
			base.Shape = shape
			return c.runTube(cmd.Context(), args[0], base, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: <input>.mask)")
	cmd.Flags().StringVar(&f.shape, "shape", "", "volume shape as X,Y,Z")
	cmd.Flags().Float64VarP(&opts.Radius, "radius", "r", 1, "tube radius in voxels")
	cmd.Flags().StringVar(&opts.Render, "render", pipeline.DefaultRenderMode, "renderer: edt, spheres")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "segments rendered in parallel, up to 256 (0 or 1: sequential)")
	cmd.Flags().StringVar(&opts.Compression, "compression", pipeline.DefaultCompression, "mask compression: zstd, snappy, none")
	cmd.Flags().StringVar(&f.tiffDir, "tiff-dir", "", "also write z slices as TIFF files into this directory")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")

	cmd.Flags().BoolVar(&f.trace, "trace", false, "input is a trace document to fit and render")
	cmd.Flags().StringVar(&opts.Mode, "mode", pipeline.DefaultBranchMode, "decomposition with --trace: branchpoints, longest")
	cmd.Flags().StringVar(&opts.Root, "root", "", "root node with --trace")
	cmd.Flags().IntVar(&opts.Samples, "samples", 0, "with --trace, render each branch through this many curve samples")

	_ = cmd.MarkFlagRequired("shape")
	return cmd
}

func (c *CLI) runTube(ctx context.Context, input string, opts pipeline.Options, f tubeFlags) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Rendering tube...")
	spinner.Start()
	start := time.Now()

	var (
		mask     *voxel.Mask
		cacheHit bool
		s        stats
	)
	if f.trace {
		g, err := traceio.ImportJSON(input)
		if err != nil {
			spinner.Stop()
			return fmt.Errorf("load trace %s: %w", input, err)
		}
		res, err := runner.Execute(ctx, g, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		mask = res.Mask
		cacheHit = res.CacheInfo.FitHit && res.CacheInfo.RenderHit
		s.nodes, s.branches = res.Stats.NodeCount, res.Stats.BranchCount
	} else {
		vertices, err := traceio.ImportVertices(input)
		if err != nil {
			spinner.Stop()
			return fmt.Errorf("load vertices %s: %w", input, err)
		}
		mask, cacheHit, err = runner.TubeWithCacheInfo(ctx, vertices, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	compression, _ := voxel.ParseCompression(opts.Compression)
	data, err := voxel.Encode(mask, compression)
	if err != nil {
		return err
	}
	path := outputPath(input, f.output, ".mask")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Tube rendered")
	printFile(path)
	if f.tiffDir != "" {
		paths, err := voxel.WriteTIFFSlices(f.tiffDir, mask)
		if err != nil {
			return err
		}
		printFile(fmt.Sprintf("%s (%d slices)", f.tiffDir, len(paths)))
	}

	s.voxels = mask.Count()
	s.bytes = len(data)
	s.elapsed = time.Since(start)
	s.showCache = true
	s.cached = cacheHit
	printStats(s)
	return nil
}
