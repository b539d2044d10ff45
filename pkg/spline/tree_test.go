package spline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/trace"
	"github.com/matzehuels/tracetube/pkg/trace/branch"
)

func yTree(t *testing.T) *trace.Graph {
	t.Helper()
	g := trace.New()
	require.NoError(t, g.AddPoint("1", 100, 100, 200))
	require.NoError(t, g.AddPoint("2", 200, 0, 200))
	require.NoError(t, g.AddPoint("3", 200, 300, 200))
	require.NoError(t, g.AddPoint("4", 300, 400, 200))
	require.NoError(t, g.AddPoint("5", 100, 500, 200))
	require.NoError(t, g.AddEdge(trace.Edge{From: "2", To: "1"}))
	require.NoError(t, g.AddEdge(trace.Edge{From: "2", To: "3"}))
	require.NoError(t, g.AddEdge(trace.Edge{From: "3", To: "4"}))
	require.NoError(t, g.AddEdge(trace.Edge{From: "3", To: "5"}))
	return g
}

func TestBuildTree_BranchPoints(t *testing.T) {
	tree, err := BuildTree(yTree(t), TreeOptions{})
	require.NoError(t, err)

	require.Equal(t, 3, tree.Len())
	assert.Equal(t, "1", tree.Root)
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}}, tree.Edges())
	assert.Equal(t, []int{1, 2}, tree.Leaves())

	main := tree.Nodes[0]
	assert.Equal(t, -1, main.Parent)
	assert.Equal(t, 2, main.Curve.Degree, "three points fit a quadratic")

	for _, i := range []int{1, 2} {
		child := tree.Nodes[i]
		assert.Equal(t, 0, child.Parent)
		assert.Equal(t, main.Curve.Params[2], child.StartingLength)
		near(t, child.Points[0], child.Curve.Eval(0), 1e-9)
	}
}

func TestBuildTree_LongestPath(t *testing.T) {
	tree, err := BuildTree(yTree(t), TreeOptions{Branch: branch.Options{Root: "1", Mode: branch.ModeLongestPath}})
	require.NoError(t, err)

	require.Equal(t, 2, tree.Len())
	assert.Equal(t, []string{"1", "2", "3", "5"}, tree.Nodes[0].Path)
	assert.Equal(t, []int{1}, tree.Nodes[0].Children)
	assert.Equal(t, []string{"3", "4"}, tree.Nodes[1].Path)
	assert.Greater(t, tree.Nodes[1].StartingLength, 0.0)

	// The attachment point on the main curve is where the child starts.
	main := tree.Nodes[0].Curve
	near(t, tree.Nodes[1].Points[0], main.Eval(tree.Nodes[1].StartingLength), 1e-6)
}

func TestBuildTree_SingleNode(t *testing.T) {
	g := trace.New()
	require.NoError(t, g.AddPoint("solo", 0, 0, 0))

	tree, err := BuildTree(g, TreeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, "solo", tree.Root)
}

func TestBuildTree_FailsBeforeFitting(t *testing.T) {
	g := trace.New()
	require.NoError(t, g.AddPoint("1", 0, 0, 0))
	require.NoError(t, g.AddNode(trace.Node{ID: "2"}))

	_, err := BuildTree(g, TreeOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeMissingAttribute), "got %v", err)
}
