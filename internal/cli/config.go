package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/tracetube/internal/api"
	"github.com/matzehuels/tracetube/pkg/cache"
)

// Config is the on-disk CLI configuration. Every section is optional; flags
// given on the command line win over values read here.
//
//	[log]
//	file = "/var/log/tracetube.log"
//	max_size_mb = 50
//
//	[cache]
//	backend = "badger"
//
//	[render]
//	mode = "spheres"
//	radius = 2.5
type Config struct {
	Log    LogConfig    `toml:"log"`
	Cache  cache.Config `toml:"cache"`
	Fit    FitConfig    `toml:"fit"`
	Render RenderConfig `toml:"render"`
	Server api.Config   `toml:"server"`
}

// LogConfig sends a copy of the log to a size-rotated file.
type LogConfig struct {
	Level      string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `toml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `toml:"max_age_days" validate:"gte=0"`
}

// FitConfig holds defaults for decomposition and spline fitting.
type FitConfig struct {
	Mode          string `toml:"mode" validate:"omitempty,oneof=branchpoints longest"`
	Degree        int    `toml:"degree" validate:"gte=0,lte=5"`
	ControlPoints int    `toml:"control_points" validate:"gte=0"`
}

// RenderConfig holds defaults for tube rendering.
type RenderConfig struct {
	Mode        string  `toml:"mode" validate:"omitempty,oneof=edt spheres"`
	Radius      float64 `toml:"radius" validate:"gte=0"`
	Workers     int     `toml:"workers" validate:"gte=0,lte=256"`
	Compression string  `toml:"compression" validate:"omitempty,oneof=none snappy zstd"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Log:    LogConfig{MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28},
		Render: RenderConfig{Radius: 1},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads path over DefaultConfig. A missing file is an error only
// when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// writer returns the rotating log file, or nil when no file is configured.
func (l LogConfig) writer() io.WriteCloser {
	if l.File == "" {
		return nil
	}
	_ = os.MkdirAll(filepath.Dir(l.File), 0o755)
	return &lumberjack.Logger{
		Filename:   l.File,
		MaxSize:    l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAgeDays,
	}
}
