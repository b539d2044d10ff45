package traceio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/spline"
)

// WriteTree encodes a fitted spline tree as indented JSON.
func WriteTree(t *spline.Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}

// ExportTree writes a spline tree to the file at path.
func ExportTree(t *spline.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTree(t, f)
}

// ReadTree decodes a spline tree written by [WriteTree]. Parent and child
// indices are checked so a decoded tree is safe to walk.
func ReadTree(r io.Reader) (*spline.Tree, error) {
	var t spline.Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree")
	}
	if err := checkTree(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// MarshalTree returns the compact encoding of t.
func MarshalTree(t *spline.Tree) ([]byte, error) {
	return json.Marshal(t)
}

// UnmarshalTree decodes and checks a compact tree encoding.
func UnmarshalTree(data []byte) (*spline.Tree, error) {
	var t spline.Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree")
	}
	if err := checkTree(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func checkTree(t *spline.Tree) error {
	n := len(t.Nodes)
	for i, nd := range t.Nodes {
		if nd.Curve == nil {
			return errors.New(errors.ErrCodeInvalidFormat, "tree node %d has no curve", i)
		}
		if nd.Parent < -1 || nd.Parent >= n || nd.Parent == i {
			return errors.New(errors.ErrCodeInvalidFormat, "tree node %d has parent %d", i, nd.Parent)
		}
		for _, c := range nd.Children {
			if c < 0 || c >= n || t.Nodes[c].Parent != i {
				return errors.New(errors.ErrCodeInvalidFormat, "tree node %d lists bad child %d", i, c)
			}
		}
	}
	return nil
}
