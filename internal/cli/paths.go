package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// xdgDir resolves $env/tracetube, falling back to ~/fallback/tracetube when
// env is unset.
func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// cacheDir is where the file and badger caches live by default.
func cacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// configDir holds config.toml.
func configDir() (string, error) { return xdgDir("XDG_CONFIG_HOME", ".config") }

// outputPath returns output, or input with its extension replaced by suffix
// when output is empty.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}
