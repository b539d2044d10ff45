package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracetube/pkg/buildinfo"
	"github.com/matzehuels/tracetube/pkg/cache"
	"github.com/matzehuels/tracetube/pkg/observability"
	"github.com/matzehuels/tracetube/pkg/pipeline"
)

// appName names the binary and its XDG directories.
const appName = "tracetube"

// Levels main selects between before any config is read.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI is the state shared by every subcommand: the logger and the loaded
// config file.
type CLI struct {
	Logger *log.Logger

	logOut     io.Writer
	configPath string
	config     *Config
	logCloser  io.Closer
}

// New returns a CLI logging to w at level, with the built-in config until a
// command runs and loads the config file.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		logOut: w,
		config: DefaultConfig(),
	}
}

func (c *CLI) SetLogLevel(level log.Level) { c.Logger.SetLevel(level) }

// Close releases the rotating log file, if one was opened.
func (c *CLI) Close() error {
	if c.logCloser == nil {
		return nil
	}
	err := c.logCloser.Close()
	c.logCloser = nil
	return err
}

// RootCommand assembles the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tracetube turns traced neurons into voxel tubes",
		Long: `Tracetube validates traced neuron skeletons, splits them into branches,
fits a B-spline to every branch and renders the result as a voxel mask.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tracetube/config.toml)")

	root.AddCommand(
		c.validateCommand(),
		c.branchesCommand(),
		c.fitCommand(),
		c.tubeCommand(),
		c.subsampleCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)
	return root
}

// loadConfig reads --config, or the XDG config file when the flag is unset
// and the file exists. A [log] level can only make logging more verbose; a
// [log] file receives a copy of every log line.
func (c *CLI) loadConfig() error {
	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg, err := LoadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.config = cfg

	if cfg.Log.Level != "" {
		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		if c.Logger.GetLevel() > level {
			c.SetLogLevel(level)
		}
	}
	if w := cfg.Log.writer(); w != nil {
		c.logCloser = w
		c.Logger.SetOutput(io.MultiWriter(c.logOut, w))
	}
	return nil
}

// newRunner creates a pipeline runner backed by the configured cache. Stage
// and cache events are logged at debug level unless a command installs other
// hooks afterwards.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	return pipeline.NewRunner(store, c.config.Cache.Keyer(), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.config.Cache
	if cfg.Dir == "" && usesDir(cfg.Backend) {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		cfg.Dir = dir
	}
	return cache.Open(ctx, cfg, c.Logger)
}

func usesDir(backend string) bool {
	return backend == "" || backend == cache.BackendFile || backend == cache.BackendBadger
}

// pipelineOptions seeds pipeline options from the config file. Flags override
// the result.
func (c *CLI) pipelineOptions() pipeline.Options {
	f, r := c.config.Fit, c.config.Render
	return pipeline.Options{
		Mode:          f.Mode,
		Degree:        f.Degree,
		ControlPoints: f.ControlPoints,
		Radius:        r.Radius,
		Render:        r.Mode,
		Workers:       r.Workers,
		Compression:   r.Compression,
		Logger:        c.Logger,
	}
}

// parseInts parses a comma-separated integer list. Blanks around the
// numbers are allowed.
func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = n
	}
	return out, nil
}

// parseShape parses "X,Y,Z" into a volume shape.
func parseShape(s string) ([3]int, error) {
	var shape [3]int
	dims, err := parseInts(s)
	if err != nil {
		return shape, fmt.Errorf("shape %w", err)
	}
	if len(dims) != 3 {
		return shape, fmt.Errorf("shape %q: want X,Y,Z", s)
	}
	copy(shape[:], dims)
	return shape, nil
}
