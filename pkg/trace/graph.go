package trace

import (
	"errors"
	"reflect"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownRoot is returned by [Graph.SetRoot] when the node is not in
	// the graph.
	ErrUnknownRoot = errors.New("unknown root node")
)

// LocKey is the attribute key holding a node's 3D coordinate.
const LocKey = "loc"

// Attrs stores arbitrary key-value attributes attached to a node. The
// coordinate lives under [LocKey]; other keys (radius, type, comments from a
// tracing tool) are carried along untouched.
type Attrs map[string]any

// Node is a traced point. The zero value is not usable - ID must be set
// before adding it to a Graph.
type Node struct {
	ID    string // Caller-chosen unique identifier
	Attrs Attrs  // Attributes (never nil after AddNode)
}

// Loc returns the raw coordinate attribute and whether it is present.
func (n Node) Loc() (any, bool) {
	v, ok := n.Attrs[LocKey]
	return v, ok
}

// Edge records adjacency along the physical trace. Direction is kept for
// round-tripping but validation and decomposition ignore it.
type Edge struct {
	From string
	To   string
}

// Graph is an attributed trace graph. Nodes are stored in an arena in
// insertion order; adjacency is kept as undirected neighbour index lists so
// degree and neighbour lookups do not depend on edge direction.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes []*Node
	index map[string]int
	edges []Edge
	adj   [][]int
	root  string
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the ID is
// empty or ErrDuplicateNodeID if it is already in use. Attributes are not
// checked here; see [Graph.Validate].
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.index[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	node := &n
	g.index[node.ID] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.adj = append(g.adj, nil)
	return nil
}

// AddPoint is a convenience wrapper around AddNode for a node whose only
// attribute is its coordinate.
func (g *Graph) AddPoint(id string, x, y, z float64) error {
	return g.AddNode(Node{ID: id, Attrs: Attrs{LocKey: []float64{x, y, z}}})
}

// AddEdge adds an edge between two existing nodes. Self loops and repeated
// edges are accepted here and rejected later by validation as cycles.
func (g *Graph) AddEdge(e Edge) error {
	from, ok := g.index[e.From]
	if !ok {
		return ErrUnknownSourceNode
	}
	to, ok := g.index[e.To]
	if !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.adj[from] = append(g.adj[from], to)
	if from != to {
		g.adj[to] = append(g.adj[to], from)
	}
	return nil
}

// SetRoot designates the node decomposition starts from.
func (g *Graph) SetRoot(id string) error {
	if _, ok := g.index[id]; !ok {
		return ErrUnknownRoot
	}
	g.root = id
	return nil
}

// Root returns the designated root, or "" if none was set.
func (g *Graph) Root() string { return g.root }

// Node returns the node with the given ID and true, or nil and false if not
// found. The pointer refers to the stored node.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Degree returns the undirected degree of the node, or 0 if it doesn't exist.
func (g *Graph) Degree(id string) int {
	i, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.adj[i])
}

// Neighbors returns the IDs adjacent to the node, in edge insertion order.
// Returns nil if the node has no edges or doesn't exist.
func (g *Graph) Neighbors(id string) []string {
	i, ok := g.index[id]
	if !ok || len(g.adj[i]) == 0 {
		return nil
	}
	out := make([]string, len(g.adj[i]))
	for k, j := range g.adj[i] {
		out[k] = g.nodes[j].ID
	}
	return out
}

// Point returns the node's coordinate as a 3-vector. It reports false when
// the node is missing or its loc attribute would not pass validation.
func (g *Graph) Point(id string) ([3]float64, bool) {
	n, ok := g.Node(id)
	if !ok {
		return [3]float64{}, false
	}
	v, ok := n.Loc()
	if !ok {
		return [3]float64{}, false
	}
	return toPoint(v)
}

// Points returns the coordinates for ids in order. It reports false if any
// of them is missing or malformed.
func (g *Graph) Points(ids []string) ([][3]float64, bool) {
	out := make([][3]float64, len(ids))
	for i, id := range ids {
		p, ok := g.Point(id)
		if !ok {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}

// toPoint converts a flat numeric slice or array of length 3 into a point.
func toPoint(v any) ([3]float64, bool) {
	var p [3]float64
	rv := reflect.ValueOf(v)
	if !isSequence(rv) || rv.Len() != 3 {
		return p, false
	}
	for i := range 3 {
		f, ok := realValue(rv.Index(i))
		if !ok {
			return p, false
		}
		p[i] = f
	}
	return p, true
}
