// Package trace provides the attributed graph used to represent a traced
// neuron skeleton and the validation chain that proves it is a tree.
//
// # Overview
//
// Biologists trace neurons as chains of 3D coordinates. A [Graph] holds one
// such trace: every node carries a caller-chosen ID and an [Attrs] map whose
// [LocKey] ("loc") entry is the node's coordinate. Edges record adjacency
// along the trace. Direction is preserved for export but ignored everywhere
// else.
//
// # Basic Usage
//
//	g := trace.New()
//	g.AddPoint("1", 100, 100, 200)
//	g.AddPoint("2", 200, 200, 400)
//	g.AddEdge(trace.Edge{From: "2", To: "1"})
//	if err := g.Validate(); err != nil {
//	    // errors.GetCode(err) names the failed precondition
//	}
//
// # Validation
//
// [Graph.Validate] evaluates the chain returned by [Checks] in order and
// stops at the first failure:
//
//  1. presence of "loc" on every node (MISSING_ATTRIBUTE)
//  2. "loc" is a slice or array (INVALID_ATTRIBUTE_TYPE)
//  3. "loc" is flat (INVALID_SHAPE)
//  4. "loc" is non-empty (EMPTY_ATTRIBUTE)
//  5. every element is an integer or finite float (NON_REAL_ELEMENT)
//  6. exactly 3 coordinates (WRONG_DIMENSIONALITY)
//  7. coordinates are unique (DUPLICATE_COORDINATE)
//  8. the graph has at least one node (EMPTY_GRAPH)
//  9. edges cover every node (INVALID_COVER)
//  10. no undirected cycle (CYCLE_DETECTED)
//  11. one connected component (DISCONNECTED_GRAPH)
//
// A single-node graph passes the edge checks trivially. Validation never
// repairs the graph; callers fix their input and try again.
package trace
