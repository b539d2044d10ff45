// Package cli implements the tracetube command-line interface.
//
// The commands mirror the pipeline stages: validate checks a trace, branches
// prints its decomposition, fit writes the spline tree, tube renders a voxel
// mask and subsample crops a centred window out of a flat array. serve runs
// the same stages behind the HTTP API, and cache manages the local result
// cache.
//
// # Configuration
//
// Defaults for every stage are read from
// $XDG_CONFIG_HOME/tracetube/config.toml (or --config). Flags override the
// file. A [log] file setting copies the log into a size-rotated file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
