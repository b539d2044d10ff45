package traceio

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// ReadVertices decodes a vertex sequence: a JSON array of [x, y, z]
// triples. Each entry must have exactly three finite coordinates.
func ReadVertices(r io.Reader) ([][3]float64, error) {
	var raw [][]float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode vertices")
	}
	out := make([][3]float64, len(raw))
	for i, v := range raw {
		if len(v) != 3 {
			return nil, errors.New(errors.ErrCodeWrongDimensionality,
				"vertex %d has %d coordinates, want 3", i, len(v))
		}
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return nil, errors.New(errors.ErrCodeNonRealElement, "vertex %d is not finite", i)
			}
		}
		out[i] = [3]float64{v[0], v[1], v[2]}
	}
	return out, nil
}

// ImportVertices reads a vertex sequence from the file at path.
func ImportVertices(path string) ([][3]float64, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadVertices(f)
}

// WriteVertices encodes a vertex sequence.
func WriteVertices(vertices [][3]float64, w io.Writer) error {
	if vertices == nil {
		vertices = [][3]float64{}
	}
	return json.NewEncoder(w).Encode(vertices)
}

// MarshalVertices returns the compact encoding of a vertex sequence, used
// for content hashing.
func MarshalVertices(vertices [][3]float64) ([]byte, error) {
	if vertices == nil {
		vertices = [][3]float64{}
	}
	return json.Marshal(vertices)
}
