// Package branch splits a validated trace tree into linear branches.
//
// A branch is a simple path whose interior nodes all have degree 2 in the
// trace. The branches of a decomposition reproduce every edge of the tree
// exactly once, so fitting each branch with a curve and stitching the curves
// back together at their attachment points recovers the full skeleton.
//
// Two conventions are supported. [ModeBranchPoints] cuts the tree at every
// root, leaf and fork, producing one branch per maximal unbranched run.
// [ModeLongestPath] instead keeps the longest root-to-leaf path whole as the
// main branch and hangs every remaining subtree off it, longest first.
package branch

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/trace"
)

// Mode selects the decomposition convention.
type Mode string

const (
	// ModeBranchPoints cuts at every classification point (root, leaves,
	// nodes of degree 3 or more).
	ModeBranchPoints Mode = "branchpoints"

	// ModeLongestPath emits the longest root-to-leaf path first and recurses
	// into the subtrees hanging off emitted branches.
	ModeLongestPath Mode = "longest"
)

// Modes lists the supported decomposition modes.
var Modes = []Mode{ModeBranchPoints, ModeLongestPath}

// Options configures Decompose.
type Options struct {
	// Root is the node the decomposition starts from. If empty, the graph's
	// designated root is used, or failing that the first inserted node of
	// minimum degree.
	Root string

	// Mode selects the convention. Defaults to ModeBranchPoints.
	Mode Mode
}

// Branch is one linear piece of the tree.
type Branch struct {
	IDs    []string     // Node IDs from the attachment point outwards
	Points [][3]float64 // Coordinates matching IDs
	Parent int          // Index of the branch this one starts on, -1 for top-level
	Attach int          // Position in the parent's IDs where this branch starts
}

// Len returns the number of edges in the branch.
func (b Branch) Len() int { return max(len(b.IDs)-1, 0) }

// ArcLength returns the polyline length of the branch.
func (b Branch) ArcLength() float64 { return polyline(b.Points) }

// ParseMode converts a user supplied mode name. The empty string selects
// ModeBranchPoints.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeBranchPoints, nil
	}
	m := Mode(s)
	if !slices.Contains(Modes, m) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown decomposition mode %q (want one of %v)", s, Modes)
	}
	return m, nil
}

// Decompose validates g and splits it into branches. Validation errors are
// returned unchanged so callers can inspect their codes. A single-node graph
// yields no branches.
func Decompose(g *trace.Graph, opts Options) ([]Branch, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	root, err := pickRoot(g, opts.Root)
	if err != nil {
		return nil, err
	}
	if g.NodeCount() < 2 {
		return nil, nil
	}

	w := newWalker(g)
	var out []Branch
	switch mode {
	case ModeLongestPath:
		out = w.longestPaths(root)
	default:
		out = w.betweenBranchPoints(root)
	}
	for i := range out {
		out[i].Points, _ = g.Points(out[i].IDs)
	}
	return out, nil
}

// Root returns the node Decompose would start from for the given options.
func Root(g *trace.Graph, opts Options) (string, error) {
	return pickRoot(g, opts.Root)
}

func pickRoot(g *trace.Graph, explicit string) (string, error) {
	for _, id := range []string{explicit, g.Root()} {
		if id == "" {
			continue
		}
		if _, ok := g.Node(id); !ok {
			return "", errors.New(errors.ErrCodeNotFound, "root node %q is not in the graph", id)
		}
		return id, nil
	}
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return "", errors.New(errors.ErrCodeEmptyGraph, "the graph has no nodes")
	}
	best, bestDeg := nodes[0].ID, math.MaxInt
	for _, n := range nodes {
		if d := g.Degree(n.ID); d < bestDeg {
			best, bestDeg = n.ID, d
		}
	}
	return best, nil
}

// walker holds per-call traversal state.
type walker struct {
	g       *trace.Graph
	visited map[string]bool
}

func newWalker(g *trace.Graph) *walker {
	return &walker{g: g, visited: make(map[string]bool, g.NodeCount())}
}

// =============================================================================
// ModeBranchPoints
// =============================================================================

func (w *walker) betweenBranchPoints(root string) []Branch {
	type start struct {
		id     string
		parent int
		attach int
	}

	var out []Branch
	w.visited[root] = true
	queue := []start{{id: root, parent: -1}}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		for _, next := range w.g.Neighbors(s.id) {
			if w.visited[next] {
				continue
			}
			path := w.run(s.id, next, root)
			out = append(out, Branch{IDs: path, Parent: s.parent, Attach: s.attach})
			end := path[len(path)-1]
			queue = append(queue, start{id: end, parent: len(out) - 1, attach: len(path) - 1})
		}
	}
	return out
}

// run walks from `from` through `next` until it reaches a node that is not a
// pass-through node, marking interior and end nodes visited.
func (w *walker) run(from, next, root string) []string {
	path := []string{from}
	prev, cur := from, next
	for {
		path = append(path, cur)
		w.visited[cur] = true
		if cur == root || w.g.Degree(cur) != 2 {
			return path
		}
		nbrs := w.g.Neighbors(cur)
		following := nbrs[0]
		if following == prev {
			following = nbrs[1]
		}
		prev, cur = cur, following
	}
}

// =============================================================================
// ModeLongestPath
// =============================================================================

func (w *walker) longestPaths(root string) []Branch {
	w.visited[root] = true
	main := w.farthest(root, "")
	out := []Branch{{IDs: main, Parent: -1}}
	w.mark(main)

	for bi := 0; bi < len(out); bi++ {
		var children []Branch
		for pos, id := range out[bi].IDs {
			for _, next := range w.g.Neighbors(id) {
				if w.visited[next] {
					continue
				}
				path := w.farthest(next, id)
				children = append(children, Branch{
					IDs:    append([]string{id}, path...),
					Parent: bi,
					Attach: pos,
				})
				w.mark(path)
			}
		}
		slices.SortStableFunc(children, func(a, b Branch) int {
			return cmp.Compare(w.length(b.IDs), w.length(a.IDs))
		})
		out = append(out, children...)
	}
	return out
}

// farthest returns the path from start to the leaf of greatest arc length in
// the subtree entered from `from`. Ties keep the first leaf in neighbour
// order.
func (w *walker) farthest(start, from string) []string {
	type frame struct {
		id, parent string
		dist       float64
	}

	parent := map[string]string{}
	best, bestDist := start, -1.0
	stack := []frame{{id: start, parent: from}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent[f.id] = f.parent

		leaf := true
		nbrs := w.g.Neighbors(f.id)
		// Push in reverse so neighbours pop in insertion order.
		for i := len(nbrs) - 1; i >= 0; i-- {
			n := nbrs[i]
			if n == f.parent || w.visited[n] {
				continue
			}
			leaf = false
			stack = append(stack, frame{id: n, parent: f.id, dist: f.dist + w.dist(f.id, n)})
		}
		if leaf && f.dist > bestDist {
			best, bestDist = f.id, f.dist
		}
	}

	var path []string
	for id := best; id != from; id = parent[id] {
		path = append(path, id)
		if id == start {
			break
		}
	}
	slices.Reverse(path)
	return path
}

func (w *walker) mark(ids []string) {
	for _, id := range ids {
		w.visited[id] = true
	}
}

func (w *walker) dist(a, b string) float64 {
	pa, _ := w.g.Point(a)
	pb, _ := w.g.Point(b)
	return distance(pa, pb)
}

func (w *walker) length(ids []string) float64 {
	var l float64
	for i := 1; i < len(ids); i++ {
		l += w.dist(ids[i-1], ids[i])
	}
	return l
}

func distance(a, b [3]float64) float64 {
	dx, dy, dz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func polyline(pts [][3]float64) float64 {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += distance(pts[i-1], pts[i])
	}
	return l
}
