package trace_test

import (
	"fmt"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/trace"
)

func ExampleGraph_Validate() {
	// A Y-shaped trace: 1 - 2 - 3 with 3 forking to 4 and 5
	g := trace.New()
	_ = g.AddPoint("1", 100, 100, 200)
	_ = g.AddPoint("2", 200, 0, 200)
	_ = g.AddPoint("3", 200, 300, 200)
	_ = g.AddPoint("4", 300, 400, 200)
	_ = g.AddPoint("5", 100, 500, 200)
	_ = g.AddEdge(trace.Edge{From: "2", To: "1"})
	_ = g.AddEdge(trace.Edge{From: "2", To: "3"})
	_ = g.AddEdge(trace.Edge{From: "3", To: "4"})
	_ = g.AddEdge(trace.Edge{From: "3", To: "5"})

	fmt.Println("Valid:", g.Validate() == nil)
	fmt.Println("Degree of 3:", g.Degree("3"))
	// Output:
	// Valid: true
	// Degree of 3: 3
}

func ExampleGraph_Validate_cycle() {
	g := trace.New()
	_ = g.AddPoint("a", 0, 0, 0)
	_ = g.AddPoint("b", 1, 0, 0)
	_ = g.AddPoint("c", 0, 1, 0)
	_ = g.AddEdge(trace.Edge{From: "a", To: "b"})
	_ = g.AddEdge(trace.Edge{From: "b", To: "c"})
	_ = g.AddEdge(trace.Edge{From: "c", To: "a"})

	err := g.Validate()
	fmt.Println("Code:", errors.GetCode(err))
	// Output:
	// Code: CYCLE_DETECTED
}

func ExampleGraph_Validate_attributes() {
	// Attributes are checked before topology
	g := trace.New()
	_ = g.AddNode(trace.Node{ID: "a", Attrs: trace.Attrs{trace.LocKey: []int{1, 2}}})

	err := g.Validate()
	fmt.Println("Code:", errors.GetCode(err))
	// Output:
	// Code: WRONG_DIMENSIONALITY
}
