package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/traceio"
	"github.com/matzehuels/tracetube/pkg/voxel"
)

const yTrace = `{
  "root": "1",
  "nodes": [
    {"id": "1", "loc": [4, 4, 4]},
    {"id": "2", "loc": [10, 4, 4]},
    {"id": "3", "loc": [16, 4, 4]},
    {"id": "4", "loc": [24, 10, 4]},
    {"id": "5", "loc": [22, 4, 12]}
  ],
  "edges": [
    {"from": "1", "to": "2"},
    {"from": "2", "to": "3"},
    {"from": "3", "to": "4"},
    {"from": "3", "to": "5"}
  ]
}`

// runCLI executes the root command with args in an isolated config and cache
// home and returns what the command printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })

	c := New(io.Discard, LogInfo)
	t.Cleanup(func() { _ = c.Close() })
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"validate", "branches", "fit", "tube", "subsample", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, cmd.Name())
		}
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := runCLI(t, "validate", writeFile(t, "y.json", yTrace))
	require.NoError(t, err)
	assert.Contains(t, out, "is a valid trace")

	cyclic := `{"nodes": [{"id": "a", "loc": [0, 0, 0]}, {"id": "b", "loc": [1, 0, 0]}],
	            "edges": [{"from": "a", "to": "b"}, {"from": "b", "to": "a"}]}`
	out, err = runCLI(t, "validate", writeFile(t, "cycle.json", cyclic))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCycleDetected))
	assert.Contains(t, out, string(errors.ErrCodeCycleDetected))
}

func TestBranchesCommand(t *testing.T) {
	input := writeFile(t, "y.json", yTrace)

	tests := []struct {
		mode  string
		count int
	}{
		{"branchpoints", 3},
		{"longest", 2},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			out, err := runCLI(t, "branches", input, "--mode", tt.mode, "--json")
			require.NoError(t, err)

			var got []branchSummary
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			require.Len(t, got, tt.count)
			assert.Equal(t, []string{"1", "2", "3"}, got[0].IDs[:3])
			assert.Equal(t, -1, got[0].Parent)
			for _, b := range got[1:] {
				assert.Equal(t, "3", b.IDs[0], "side branches attach at the fork")
			}
		})
	}

	_, err := runCLI(t, "branches", input, "--mode", "random")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestFitCommand(t *testing.T) {
	input := writeFile(t, "y.json", yTrace)
	output := filepath.Join(t.TempDir(), "y.tree.json")

	out, err := runCLI(t, "fit", input, "-o", output, "--degree", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Fit complete")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	tree, err := traceio.ReadTree(f)
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Len())
	assert.Equal(t, "1", tree.Root)

	_, err = runCLI(t, "fit", input, "-o", output, "--degree", "7")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestTubeCommand_Vertices(t *testing.T) {
	input := writeFile(t, "line.json", `[[2, 4, 4], [12, 4, 4]]`)
	output := filepath.Join(t.TempDir(), "line.mask")
	tiffs := filepath.Join(t.TempDir(), "slices")

	out, err := runCLI(t, "tube", input, "--shape", "16,8,8", "--radius", "1",
		"--compression", "snappy", "-o", output, "--tiff-dir", tiffs, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Tube rendered")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	m, err := voxel.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, [3]int{16, 8, 8}, m.Shape)
	assert.Equal(t, uint8(1), m.At(7, 4, 4))
	assert.Equal(t, uint8(0), m.At(7, 0, 0))

	entries, err := os.ReadDir(tiffs)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}

func TestTubeCommand_Trace(t *testing.T) {
	input := writeFile(t, "y.json", yTrace)
	output := filepath.Join(t.TempDir(), "y.mask")

	_, err := runCLI(t, "tube", input, "--trace", "--shape", "32,32,32", "--radius", "1.5", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	m, err := voxel.Decode(data)
	require.NoError(t, err)
	for _, p := range [][3]int{{4, 4, 4}, {16, 4, 4}, {24, 10, 4}, {22, 4, 12}} {
		assert.Equal(t, uint8(1), m.At(p[0], p[1], p[2]), "traced point %v", p)
	}
}

func TestTubeCommand_Errors(t *testing.T) {
	input := writeFile(t, "line.json", `[[2, 4, 4], [12, 4, 4]]`)

	_, err := runCLI(t, "tube", input, "--shape", "16,8")
	assert.Error(t, err)

	_, err = runCLI(t, "tube", input, "--shape", "16,8,8", "--radius=-2")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSampleSize))

	_, err = runCLI(t, "tube", input, "--shape", "16,8,8", "--render", "marching")
	assert.Error(t, err)

	_, err = runCLI(t, "tube", input)
	assert.Error(t, err, "--shape is required")

	_, err = runCLI(t, "tube", input, "--shape", "16,8,8", "--workers", "300")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "workers above 256: %v", err)
}

func TestTubeCommand_WorkersHelp(t *testing.T) {
	flag := New(io.Discard, LogInfo).tubeCommand().Flags().Lookup("workers")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "0 or 1: sequential")
	assert.NotContains(t, flag.Usage, "CPU")
}

func TestTubeCommand_FarVertex(t *testing.T) {
	input := writeFile(t, "far.json", `[[2, 4, 4], [1e13, 4, 4]]`)
	output := filepath.Join(t.TempDir(), "far.mask")

	_, err := runCLI(t, "tube", input, "--shape", "16,8,8", "--radius", "1", "-o", output, "--no-cache")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	m, err := voxel.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), m.At(15, 4, 4))
	assert.Equal(t, uint8(0), m.At(1, 4, 4))
}

func TestSubsampleCommand(t *testing.T) {
	data := make([]int, 25)
	for i := range data {
		data[i] = i
	}
	raw, _ := json.Marshal(data)
	input := writeFile(t, "grid.json", string(raw))

	out, err := runCLI(t, "subsample", input, "--shape", "5,5", "--sub", "3,3")
	require.NoError(t, err)

	var got []float64
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []float64{6, 7, 8, 11, 12, 13, 16, 17, 18}, got)

	_, err = runCLI(t, "subsample", input, "--shape", "5,5", "--sub", "6,3")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSampleSize))
}

func TestCacheCommands(t *testing.T) {
	input := writeFile(t, "y.json", yTrace)
	cacheHome := t.TempDir()

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		prev := stdout
		stdout = &out
		defer func() { stdout = prev }()

		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("XDG_CACHE_HOME", cacheHome)
		c := New(io.Discard, LogInfo)
		defer c.Close()
		root := c.RootCommand()
		root.SetArgs(args)
		require.NoError(t, root.ExecuteContext(context.Background()))
		return out.String()
	}

	assert.Equal(t, filepath.Join(cacheHome, appName)+"\n", run("cache", "path"))

	run("fit", input, "-o", filepath.Join(t.TempDir(), "y.tree.json"))
	second := run("fit", input, "-o", filepath.Join(t.TempDir(), "y.tree.json"))
	assert.Contains(t, second, "cached")

	assert.Contains(t, run("cache", "clear"), "Freed")
	third := run("fit", input, "-o", filepath.Join(t.TempDir(), "y.tree.json"))
	assert.Contains(t, third, "fresh")
}

func TestParseShape(t *testing.T) {
	shape, err := parseShape("16, 8,4")
	require.NoError(t, err)
	assert.Equal(t, [3]int{16, 8, 4}, shape)

	for _, bad := range []string{"", "1,2", "1,2,3,4", "a,b,c"} {
		_, err := parseShape(bad)
		assert.Error(t, err, bad)
	}
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := runCLI(t, "completion", shell)
		require.NoError(t, err, shell)
		assert.Contains(t, out, "tracetube", shell)
	}

	_, err := runCLI(t, "completion", "tcsh")
	assert.Error(t, err)
}
