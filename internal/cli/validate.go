package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/traceio"
)

// validateCommand checks a trace document against the full validation chain.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [trace.json]",
		Short: "Check that a trace is a well-formed tree of 3D points",
		Long: `Check that a trace is a well-formed tree of 3D points.

Every node needs a "loc" attribute holding exactly three finite numbers, no two
nodes may share a coordinate, and the edges must connect all nodes without
forming a cycle. The first failing check is reported with its error code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(input string) error {
	g, err := traceio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load trace %s: %w", input, err)
	}

	if err := g.Validate(); err != nil {
		printError("%s is not a valid trace", input)
		printDetail("%s: %s", errors.GetCode(err), errors.UserMessage(err))
		return err
	}

	c.Logger.Debug("trace validated", "file", input)
	printSuccess("%s is a valid trace", input)
	printStats(stats{nodes: g.NodeCount()})
	return nil
}
