package trace

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func nan() float64 { return math.NaN() }

func TestAddNode(t *testing.T) {
	g := New()

	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) again = %v, want ErrDuplicateNodeID", err)
	}

	n, ok := g.Node("a")
	if !ok {
		t.Fatal("Node(a) not found")
	}
	if n.Attrs == nil {
		t.Error("Attrs should be initialised")
	}
	if _, ok := n.Loc(); ok {
		t.Error("Loc() should report missing attribute")
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	_ = g.AddPoint("a", 0, 0, 0)
	_ = g.AddPoint("b", 1, 0, 0)

	if err := g.AddEdge(Edge{From: "x", To: "b"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x->b) = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a->x) = %v, want ErrUnknownTargetNode", err)
	}
	if err := g.AddEdge(Edge{From: "b", To: "a"}); err != nil {
		t.Fatalf("AddEdge(b->a) = %v", err)
	}

	// Direction is ignored for adjacency.
	if got := g.Neighbors("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Neighbors(a) = %v, want [b]", got)
	}
	if got := g.Neighbors("b"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Neighbors(b) = %v, want [a]", got)
	}
	if g.Degree("a") != 1 || g.Degree("b") != 1 {
		t.Errorf("Degree(a), Degree(b) = %d, %d, want 1, 1", g.Degree("a"), g.Degree("b"))
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if e := g.Edges()[0]; e.From != "b" || e.To != "a" {
		t.Errorf("Edges()[0] = %+v, want b->a", e)
	}
}

func TestSetRoot(t *testing.T) {
	g := New()
	_ = g.AddPoint("a", 0, 0, 0)

	if err := g.SetRoot("missing"); !errors.Is(err, ErrUnknownRoot) {
		t.Errorf("SetRoot(missing) = %v, want ErrUnknownRoot", err)
	}
	if g.Root() != "" {
		t.Errorf("Root() = %q, want empty", g.Root())
	}
	if err := g.SetRoot("a"); err != nil {
		t.Fatalf("SetRoot(a) = %v", err)
	}
	if g.Root() != "a" {
		t.Errorf("Root() = %q, want a", g.Root())
	}
}

func TestPoint(t *testing.T) {
	g := New()
	_ = g.AddPoint("f", 1.5, 2, 3)
	_ = g.AddNode(Node{ID: "i", Attrs: Attrs{LocKey: []int{4, 5, 6}}})
	_ = g.AddNode(Node{ID: "bad", Attrs: Attrs{LocKey: []int{4, 5}}})
	_ = g.AddNode(Node{ID: "none"})

	tests := []struct {
		id   string
		want [3]float64
		ok   bool
	}{
		{"f", [3]float64{1.5, 2, 3}, true},
		{"i", [3]float64{4, 5, 6}, true},
		{"bad", [3]float64{}, false},
		{"none", [3]float64{}, false},
		{"missing", [3]float64{}, false},
	}

	for _, tt := range tests {
		got, ok := g.Point(tt.id)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Point(%q) = %v, %v; want %v, %v", tt.id, got, ok, tt.want, tt.ok)
		}
	}

	if _, ok := g.Points([]string{"f", "bad"}); ok {
		t.Error("Points() should fail when any point is malformed")
	}
	pts, ok := g.Points([]string{"i", "f"})
	if !ok || len(pts) != 2 || pts[0] != [3]float64{4, 5, 6} {
		t.Errorf("Points(i, f) = %v, %v", pts, ok)
	}
}

func TestNodesPreservesInsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"z", "a", "m"}
	for i, id := range ids {
		_ = g.AddPoint(id, float64(i), 0, 0)
	}

	var got []string
	for _, n := range g.Nodes() {
		got = append(got, n.ID)
	}
	if !slices.Equal(got, ids) {
		t.Errorf("Nodes() order = %v, want %v", got, ids)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
}
