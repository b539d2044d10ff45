package trace

import (
	"math"
	"reflect"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// Check is one entry of the validation chain: a named predicate over the
// whole graph and the error code it reports.
type Check struct {
	Name string
	Code errors.Code
	Fn   func(g *Graph) error
}

// Checks returns the validation chain in evaluation order. Point attribute
// checks run first (presence, type, flatness, non-emptiness, realness,
// length, uniqueness), then topology checks (non-empty, cover, acyclicity,
// connectivity). Each check scans every node before the next one starts, so
// the first failing precondition is the one reported.
//
// The returned slice is fresh; callers may filter or reorder it.
func Checks() []Check {
	return []Check{
		{"presence", errors.ErrCodeMissingAttribute, checkPresence},
		{"type", errors.ErrCodeInvalidAttributeType, checkType},
		{"flatness", errors.ErrCodeInvalidShape, checkFlat},
		{"non-empty", errors.ErrCodeEmptyAttribute, checkNonEmpty},
		{"real", errors.ErrCodeNonRealElement, checkReal},
		{"dimensionality", errors.ErrCodeWrongDimensionality, checkDims},
		{"uniqueness", errors.ErrCodeDuplicateCoordinate, checkUnique},
		{"non-empty graph", errors.ErrCodeEmptyGraph, checkHasNodes},
		{"cover", errors.ErrCodeInvalidCover, checkCover},
		{"acyclic", errors.ErrCodeCycleDetected, checkAcyclic},
		{"connected", errors.ErrCodeDisconnectedGraph, checkConnected},
	}
}

// Validate runs the full chain and returns the first failure, or nil if the
// graph is a well-formed tree of 3D points.
func (g *Graph) Validate() error {
	return run(g, Checks())
}

// ValidatePoints runs only the point attribute checks.
func (g *Graph) ValidatePoints() error {
	return run(g, Checks()[:7])
}

// ValidateTopology runs only the edge structure checks. It assumes the
// points are valid.
func (g *Graph) ValidateTopology() error {
	return run(g, Checks()[7:])
}

func run(g *Graph, checks []Check) error {
	for _, c := range checks {
		if err := c.Fn(g); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Point attribute checks
// =============================================================================

func checkPresence(g *Graph) error {
	for _, n := range g.nodes {
		if _, ok := n.Loc(); !ok {
			return errors.New(errors.ErrCodeMissingAttribute,
				"some nodes are missing the '%s' attribute (node %q)", LocKey, n.ID)
		}
	}
	return nil
}

func checkType(g *Graph) error {
	for _, n := range g.nodes {
		v, _ := n.Loc()
		if !isSequence(reflect.ValueOf(v)) {
			return errors.New(errors.ErrCodeInvalidAttributeType,
				"%v should be a numeric slice or array, not %T (node %q)", v, v, n.ID)
		}
	}
	return nil
}

func checkFlat(g *Graph) error {
	for _, n := range g.nodes {
		v, _ := n.Loc()
		if !isFlat(reflect.ValueOf(v)) {
			return errors.New(errors.ErrCodeInvalidShape,
				"nodes must be flat arrays (node %q has %v)", n.ID, v)
		}
	}
	return nil
}

func checkNonEmpty(g *Graph) error {
	for _, n := range g.nodes {
		v, _ := n.Loc()
		if reflect.ValueOf(v).Len() == 0 {
			return errors.New(errors.ErrCodeEmptyAttribute,
				"nodes cannot have empty '%s' attributes (node %q)", LocKey, n.ID)
		}
	}
	return nil
}

func checkReal(g *Graph) error {
	for _, n := range g.nodes {
		v, _ := n.Loc()
		rv := reflect.ValueOf(v)
		for i := range rv.Len() {
			if _, ok := realValue(rv.Index(i)); !ok {
				return errors.New(errors.ErrCodeNonRealElement,
					"%v elements should be integer or floating point (node %q)", v, n.ID)
			}
		}
	}
	return nil
}

func checkDims(g *Graph) error {
	for _, n := range g.nodes {
		v, _ := n.Loc()
		if l := reflect.ValueOf(v).Len(); l != 3 {
			return errors.New(errors.ErrCodeWrongDimensionality,
				"'%s' attributes must contain 3 coordinates (node %q has %d)", LocKey, n.ID, l)
		}
	}
	return nil
}

func checkUnique(g *Graph) error {
	seen := make(map[[3]float64]string, len(g.nodes))
	for _, n := range g.nodes {
		v, _ := n.Loc()
		p, _ := toPoint(v)
		if other, dup := seen[p]; dup {
			return errors.New(errors.ErrCodeDuplicateCoordinate,
				"there are duplicate nodes (%q and %q share %v)", other, n.ID, p)
		}
		seen[p] = n.ID
	}
	return nil
}

func isSequence(rv reflect.Value) bool {
	k := rv.Kind()
	return k == reflect.Slice || k == reflect.Array
}

func isFlat(rv reflect.Value) bool {
	if isSequence(reflect.Zero(rv.Type().Elem())) {
		return false
	}
	if rv.Type().Elem().Kind() != reflect.Interface {
		return true
	}
	for i := range rv.Len() {
		if isSequence(reflect.ValueOf(rv.Index(i).Interface())) {
			return false
		}
	}
	return true
}

// realValue converts an element to float64. Non-finite floats are not real
// coordinates and are rejected.
func realValue(rv reflect.Value) (float64, bool) {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// =============================================================================
// Topology checks
// =============================================================================

func checkHasNodes(g *Graph) error {
	if len(g.nodes) == 0 {
		return errors.New(errors.ErrCodeEmptyGraph, "the graph has no nodes")
	}
	return nil
}

func checkCover(g *Graph) error {
	if len(g.nodes) < 2 {
		return nil
	}
	for i, n := range g.nodes {
		if len(g.adj[i]) == 0 {
			return errors.New(errors.ErrCodeInvalidCover,
				"the edges are not a valid cover of the graph (node %q has no edges)", n.ID)
		}
	}
	return nil
}

func checkAcyclic(g *Graph) error {
	if len(g.nodes) < 2 && len(g.edges) == 0 {
		return nil
	}
	ds := newDisjointSet(len(g.nodes))
	for _, e := range g.edges {
		if !ds.union(g.index[e.From], g.index[e.To]) {
			return errors.New(errors.ErrCodeCycleDetected,
				"the graph contains undirected cycles (edge %s-%s closes a cycle)", e.From, e.To)
		}
	}
	return nil
}

func checkConnected(g *Graph) error {
	if len(g.nodes) < 2 {
		return nil
	}
	ds := newDisjointSet(len(g.nodes))
	for _, e := range g.edges {
		ds.union(g.index[e.From], g.index[e.To])
	}
	if ds.sets != 1 {
		return errors.New(errors.ErrCodeDisconnectedGraph,
			"the graph contains disconnected segments (%d components)", ds.sets)
	}
	return nil
}

// disjointSet is a union-find forest with path halving and union by size.
type disjointSet struct {
	parent []int
	size   []int
	sets   int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), size: make([]int, n), sets: n}
	for i := range ds.parent {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

// union joins the sets of a and b. It returns false if they were already
// joined, which for an edge list means the edge closes a cycle.
func (ds *disjointSet) union(a, b int) bool {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return false
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
	ds.sets--
	return true
}
