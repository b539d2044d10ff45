package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracetube/pkg/trace/branch"
	"github.com/matzehuels/tracetube/pkg/traceio"
)

// branchesCommand prints the branch decomposition of a trace.
func (c *CLI) branchesCommand() *cobra.Command {
	var (
		root   string
		mode   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "branches [trace.json]",
		Short: "Split a trace into linear branches",
		Long: `Split a trace into linear branches.

With --mode branchpoints (default) the tree is cut at its root, its leaves and
every fork. With --mode longest the longest root-to-leaf path is kept whole and
the remaining subtrees hang off it, longest first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("mode") {
				mode = c.config.Fit.Mode
			}
			return c.runBranches(args[0], branch.Options{Root: root, Mode: branch.Mode(mode)}, asJSON)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(branch.ModeBranchPoints), "decomposition: branchpoints, longest")
	cmd.Flags().StringVar(&root, "root", "", "node to start from (default: the trace's root)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print branches as JSON")

	return cmd
}

type branchSummary struct {
	IDs       []string `json:"ids"`
	Parent    int      `json:"parent"`
	Attach    int      `json:"attach"`
	ArcLength float64  `json:"arc_length"`
}

func (c *CLI) runBranches(input string, opts branch.Options, asJSON bool) error {
	g, err := traceio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load trace %s: %w", input, err)
	}

	branches, err := branch.Decompose(g, opts)
	if err != nil {
		return err
	}
	root, err := branch.Root(g, opts)
	if err != nil {
		return err
	}

	if asJSON {
		out := make([]branchSummary, len(branches))
		for i, b := range branches {
			out[i] = branchSummary{IDs: b.IDs, Parent: b.Parent, Attach: b.Attach, ArcLength: b.ArcLength()}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printSuccess("Decomposed from root %s", StyleNumber.Render(root))
	for i, b := range branches {
		printKeyValue(fmt.Sprintf("branch %d", i), fmt.Sprintf("%s  (parent %d, length %.2f)",
			strings.Join(b.IDs, "-"), b.Parent, b.ArcLength()))
	}
	printStats(stats{nodes: g.NodeCount(), branches: len(branches)})
	return nil
}
