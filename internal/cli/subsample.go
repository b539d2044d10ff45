package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/neighborhood"
)

// subsampleCommand crops the centred window of a flat row-major array.
func (c *CLI) subsampleCommand() *cobra.Command {
	var shape, sub string

	cmd := &cobra.Command{
		Use:   "subsample [data.json]",
		Short: "Extract the centred window of a flat array",
		Long: `Extract the centred window of a flat array.

The input is a JSON array of numbers laid out row-major in --shape. The output
is the --sub sized window centred on the middle element, also row-major. When
shape and window differ by an odd amount the window sits one element towards
the start.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseInts(shape)
			if err != nil {
				return fmt.Errorf("--shape %w", err)
			}
			w, err := parseInts(sub)
			if err != nil {
				return fmt.Errorf("--sub %w", err)
			}
			return c.runSubsample(args[0], s, w)
		},
	}

	cmd.Flags().StringVar(&shape, "shape", "", "array shape, comma separated")
	cmd.Flags().StringVar(&sub, "sub", "", "window shape, comma separated")
	_ = cmd.MarkFlagRequired("shape")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}

func (c *CLI) runSubsample(input string, shape, sub []int) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", input)
	}
	var data []float64
	if err := json.Unmarshal(raw, &data); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", input)
	}

	out, err := neighborhood.Subsample(data, shape, sub)
	if err != nil {
		return err
	}
	c.Logger.Debug("subsampled", "in", len(data), "out", len(out))
	return json.NewEncoder(stdout).Encode(out)
}
