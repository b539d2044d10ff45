package traceio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tracetube/pkg/trace"
)

type document struct {
	Root  nodeID `json:"root,omitempty"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID    nodeID          `json:"id"`
	Loc   json.RawMessage `json:"loc,omitempty"`
	Attrs map[string]any  `json:"attrs,omitempty"`
}

type edge struct {
	From nodeID `json:"from"`
	To   nodeID `json:"to"`
}

func toDocument(g *trace.Graph) (document, error) {
	doc := document{
		Root:  nodeID(g.Root()),
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out := node{ID: nodeID(n.ID)}
		for k, v := range n.Attrs {
			if k == trace.LocKey {
				raw, err := json.Marshal(v)
				if err != nil {
					return document{}, fmt.Errorf("node %q: encode loc: %w", n.ID, err)
				}
				out.Loc = raw
				continue
			}
			if out.Attrs == nil {
				out.Attrs = make(map[string]any)
			}
			out.Attrs[k] = v
		}
		doc.Nodes = append(doc.Nodes, out)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, edge{From: nodeID(e.From), To: nodeID(e.To)})
	}
	return doc, nil
}

// WriteJSON encodes a trace as indented JSON. The output can be re-imported
// with [ReadJSON].
func WriteJSON(g *trace.Graph, w io.Writer) error {
	doc, err := toDocument(g)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalGraph returns the compact encoding of g. Node and edge order are
// preserved and attribute keys are sorted, so equal graphs give equal bytes.
func MarshalGraph(g *trace.Graph) ([]byte, error) {
	doc, err := toDocument(g)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ExportJSON writes a trace to a JSON file at path.
func ExportJSON(g *trace.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
