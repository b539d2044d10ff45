package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracetube/pkg/pipeline"
	"github.com/matzehuels/tracetube/pkg/spline"
	"github.com/matzehuels/tracetube/pkg/traceio"
)

// fitCommand fits a spline tree to a trace and writes it as JSON.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "fit [trace.json]",
		Short: "Fit a B-spline to every branch of a trace",
		Long: `Fit a B-spline to every branch of a trace.

The result is a spline tree: one curve per branch, linked to the branch it
starts on. It is written as JSON (default: <input>.tree.json). Results are
cached; --refresh recomputes and overwrites the cached tree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.pipelineOptions()
			flags := cmd.Flags()
			if flags.Changed("mode") {
				base.Mode = opts.Mode
			}
			if flags.Changed("degree") {
				base.Degree = opts.Degree
			}
			if flags.Changed("control-points") {
				base.ControlPoints = opts.ControlPoints
			}
			base.Root = opts.Root
			base.Refresh = opts.Refresh
			return c.runFit(cmd.Context(), args[0], base, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.tree.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.Mode, "mode", pipeline.DefaultBranchMode, "decomposition: branchpoints, longest")
	cmd.Flags().StringVar(&opts.Root, "root", "", "node to start from (default: the trace's root)")
	cmd.Flags().IntVar(&opts.Degree, "degree", spline.DefaultDegree, "spline degree (0-5)")
	cmd.Flags().IntVar(&opts.ControlPoints, "control-points", 0, "control points per branch (0: chosen from the point count)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runFit(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := traceio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load trace %s: %w", input, err)
	}
	if err := opts.ValidateForFit(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, "Fitting splines...")
	spinner.Start()
	start := time.Now()

	tree, cacheHit, err := runner.FitWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Fit failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	path := outputPath(input, output, ".tree.json")
	if err := traceio.ExportTree(tree, path); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Fit complete")
	printFile(path)
	printStats(stats{nodes: g.NodeCount(), branches: tree.Len(), elapsed: time.Since(start), showCache: true, cached: cacheHit})
	printNewline()
	printNextStep("Render", appName+" tube --trace "+input+" --shape X,Y,Z")
	return nil
}
