// Package traceio provides JSON import and export for neuron traces,
// vertex sequences and fitted spline trees.
//
// # Trace Format
//
// A trace document has a "nodes" array, an "edges" array and an optional
// "root":
//
//	{
//	  "root": "1",
//	  "nodes": [
//	    {"id": "1", "loc": [100, 100, 200]},
//	    {"id": "2", "loc": [200, 200, 400], "attrs": {"radius": 1.5}}
//	  ],
//	  "edges": [
//	    {"from": "2", "to": "1"}
//	  ]
//	}
//
// Node and edge IDs may be strings or integers; integers are kept in their
// decimal form. The "loc" value is stored as decoded, without checks, so a
// malformed coordinate surfaces as the matching validation code from
// [trace.Graph.Validate] rather than as a decode error. A node without a
// "loc" key has no coordinate attribute at all. Other per-node data goes
// under "attrs" and is carried through untouched.
//
// # Import
//
// Use [ImportJSON] to read a trace from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	g, err := traceio.ImportJSON("neuron.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Import checks document structure only (unique IDs, edges naming known
// nodes, a known root). Call [trace.Graph.Validate] for geometry and
// topology.
//
// # Export
//
// [WriteJSON] and [ExportJSON] produce the same format. [MarshalGraph]
// returns compact, deterministic bytes suitable for content hashing.
//
// # Vertices and Trees
//
// A vertex sequence is a JSON array of [x, y, z] triples; see
// [ReadVertices]. Spline trees are written as their exported struct form;
// see [WriteTree] and [ReadTree].
package traceio
