package voxel

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"github.com/matzehuels/tracetube/pkg/errors"
)

// Slice returns the z-th plane of m as an 8-bit image, x across and y down.
// Set voxels are white.
func (m *Mask) Slice(z int) (*image.Gray, error) {
	if z < 0 || z >= m.Shape[2] {
		return nil, errors.New(errors.ErrCodeInvalidSampleSize, "slice %d out of range [0, %d)", z, m.Shape[2])
	}
	img := image.NewGray(image.Rect(0, 0, m.Shape[0], m.Shape[1]))
	for x := 0; x < m.Shape[0]; x++ {
		for y := 0; y < m.Shape[1]; y++ {
			if m.At(x, y, z) != 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img, nil
}

// EncodeTIFFSlice writes plane z of m to w as a deflate-compressed TIFF.
func EncodeTIFFSlice(w io.Writer, m *Mask, z int) error {
	img, err := m.Slice(z)
	if err != nil {
		return err
	}
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

// WriteTIFFSlices writes every z plane of m into dir as slice_0000.tif,
// slice_0001.tif and so on, creating dir if needed. It returns the paths
// written.
func WriteTIFFSlices(dir string, m *Mask) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}

	paths := make([]string, 0, m.Shape[2])
	for z := 0; z < m.Shape[2]; z++ {
		path := filepath.Join(dir, fmt.Sprintf("slice_%04d.tif", z))
		if err := writeSlice(path, m, z); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeSlice(path string, m *Mask, z int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := EncodeTIFFSlice(f, m, z); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", path)
	}
	return f.Close()
}
