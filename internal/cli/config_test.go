package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
max_backups = 5

[cache]
backend = "badger"
namespace = "brain1"

[fit]
mode = "longest"
degree = 2

[render]
mode = "spheres"
radius = 2.5
compression = "snappy"

[server]
addr = "0.0.0.0:9000"
timeout = "30s"
`)

	cfg, err := LoadConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Log.MaxBackups)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB, "unset keys keep their defaults")
	assert.Equal(t, "badger", cfg.Cache.Backend)
	assert.Equal(t, "longest", cfg.Fit.Mode)
	assert.Equal(t, 2, cfg.Fit.Degree)
	assert.Equal(t, "spheres", cfg.Render.Mode)
	assert.InDelta(t, 2.5, cfg.Render.Radius, 1e-12)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
}

func TestLoadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig(path, true)
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[fit]\nsmoothness = 3\n", "unknown key"},
		{"bad degree", "[fit]\ndegree = 9\n", "Degree"},
		{"bad backend", "[cache]\nbackend = \"s3\"\n", "Backend"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", "RedisURL"},
		{"bad render mode", "[render]\nmode = \"marching\"\n", "Mode"},
		{"negative radius", "[render]\nradius = -1.0\n", "Radius"},
		{"bad addr", "[server]\naddr = \"nope\"\n", "Addr"},
		{"bad toml", "[fit\n", "read config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body), true)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCLI_LogFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	logPath := filepath.Join(t.TempDir(), "logs", "tracetube.log")
	path := writeConfig(t, "[log]\nfile = \""+filepath.ToSlash(logPath)+"\"\n")

	c := New(&strings.Builder{}, LogInfo)
	c.configPath = path
	require.NoError(t, c.loadConfig())
	c.Logger.Info("hello from the log file")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the log file")
}

func TestCLI_ConfigLevelRaisesVerbosity(t *testing.T) {
	c := New(&strings.Builder{}, LogInfo)
	c.configPath = writeConfig(t, "[log]\nlevel = \"debug\"\n")
	require.NoError(t, c.loadConfig())
	assert.Equal(t, LogDebug, c.Logger.GetLevel())

	c = New(&strings.Builder{}, LogDebug)
	c.configPath = writeConfig(t, "[log]\nlevel = \"error\"\n")
	require.NoError(t, c.loadConfig())
	assert.Equal(t, LogDebug, c.Logger.GetLevel(), "--verbose wins over a quieter config")
}
