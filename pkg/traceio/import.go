package traceio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/trace"
)

// ReadJSON decodes a JSON trace from r.
//
// ReadJSON returns an INVALID_FORMAT error if the JSON is malformed, and an
// INVALID_INPUT error if a node ID is empty or repeated or an edge names an
// unknown node. An unknown root is NOT_FOUND. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*trace.Graph, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode trace")
	}

	g := trace.New()
	for i, n := range doc.Nodes {
		attrs := trace.Attrs{}
		for k, v := range n.Attrs {
			attrs[k] = v
		}
		if len(n.Loc) > 0 {
			var loc any
			if err := json.Unmarshal(n.Loc, &loc); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %d: decode loc", i)
			}
			attrs[trace.LocKey] = loc
		}
		if err := g.AddNode(trace.Node{ID: string(n.ID), Attrs: attrs}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", n.ID)
		}
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(trace.Edge{From: string(e.From), To: string(e.To)}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s->%s", e.From, e.To)
		}
	}
	if doc.Root != "" {
		if err := g.SetRoot(string(doc.Root)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "root %q", doc.Root)
		}
	}
	return g, nil
}

// UnmarshalGraph decodes a trace from data.
func UnmarshalGraph(data []byte) (*trace.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads the trace file at path. A missing file is reported as
// FILE_NOT_FOUND.
func ImportJSON(path string) (*trace.Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// nodeID accepts either a JSON string or a JSON number.
type nodeID string

func (id *nodeID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = nodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", b)
	}
	*id = nodeID(n.String())
	return nil
}
