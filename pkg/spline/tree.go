package spline

import (
	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/trace"
	"github.com/matzehuels/tracetube/pkg/trace/branch"
)

// TreeOptions configures BuildTree.
type TreeOptions struct {
	Branch branch.Options
	Fit    FitOptions
}

// TreeNode is one fitted branch.
type TreeNode struct {
	Curve  *Curve       `json:"curve"`
	Path   []string     `json:"path"`
	Points [][3]float64 `json:"points"`

	// Parent is the index of the branch this one starts on, -1 for
	// top-level branches.
	Parent   int   `json:"parent"`
	Children []int `json:"children,omitempty"`

	// StartingLength is the arc length along the parent's data points at
	// which this branch attaches. Zero for top-level branches.
	StartingLength float64 `json:"starting_length"`
}

// Tree is the Spline Tree: one fitted curve per branch, linked
// parent-to-child in decomposition order.
type Tree struct {
	Root  string     `json:"root"`
	Nodes []TreeNode `json:"nodes"`
}

// Len returns the number of fitted branches.
func (t *Tree) Len() int { return len(t.Nodes) }

// Edges returns parent-child index pairs, parents first.
func (t *Tree) Edges() [][2]int {
	var out [][2]int
	for i, n := range t.Nodes {
		for _, c := range n.Children {
			out = append(out, [2]int{i, c})
		}
	}
	return out
}

// Leaves returns the indices of branches with no children.
func (t *Tree) Leaves() []int {
	var out []int
	for i, n := range t.Nodes {
		if len(n.Children) == 0 {
			out = append(out, i)
		}
	}
	return out
}

// BuildTree validates g, decomposes it into branches and fits a curve to
// each one. It fails before any fitting if the graph is not a valid tree.
// A single-node graph yields an empty tree.
func BuildTree(g *trace.Graph, opts TreeOptions) (*Tree, error) {
	branches, err := branch.Decompose(g, opts.Branch)
	if err != nil {
		return nil, err
	}
	root, err := branch.Root(g, opts.Branch)
	if err != nil {
		return nil, err
	}

	t := &Tree{Root: root, Nodes: make([]TreeNode, len(branches))}
	for i, b := range branches {
		c, err := Fit(b.Points, opts.Fit)
		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "fit branch %d", i)
		}
		node := TreeNode{
			Curve:  c,
			Path:   b.IDs,
			Points: b.Points,
			Parent: b.Parent,
		}
		if b.Parent >= 0 {
			parent := &t.Nodes[b.Parent]
			parent.Children = append(parent.Children, i)
			node.StartingLength = parent.Curve.Params[b.Attach]
		}
		t.Nodes[i] = node
	}
	return t, nil
}
