package tube

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tracetube/pkg/errors"
	"github.com/matzehuels/tracetube/pkg/voxel"
)

var zigzag = [][3]float64{
	{2, 2, 2},
	{12, 4, 3},
	{14, 14, 6},
	{4, 16, 10},
	{3, 5, 14},
}

func TestRender_SingleVertex(t *testing.T) {
	shape := [3]int{8, 9, 10}
	for _, mode := range []Mode{ModeEDT, ModeSpheres} {
		m, err := Render(shape, [][3]float64{{4, 4, 4}}, 3, Options{Mode: mode})
		require.NoError(t, err)
		assert.Equal(t, shape, m.Shape)
		assert.Equal(t, 0, m.Count())
		assert.Len(t, m.Data, 8*9*10)
	}

	m, err := Render(shape, nil, 3, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Count())
}

func TestRender_TwoNodeSpheres(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates a large volume")
	}
	shape := [3]int{210, 210, 410}
	a, b := [3]float64{100, 100, 200}, [3]float64{200, 200, 400}

	m, err := Render(shape, [][3]float64{a, b}, 5, Options{Mode: ModeSpheres})
	require.NoError(t, err)
	require.Greater(t, m.Count(), 0)

	for _, p := range voxel.Line3(a, b) {
		assert.Equal(t, uint8(1), m.At(p[0], p[1], p[2]), "line voxel %v", p)
	}
	assert.Equal(t, uint8(0), m.At(100, 100, 400))

	// Every set voxel lies within the radius of some line voxel.
	seg, err := voxel.SpheresSegment(shape, a, b, 5)
	require.NoError(t, err)
	assert.True(t, m.Equal(seg))
}

func TestRender_UnionOfSegments(t *testing.T) {
	shape := [3]int{18, 20, 17}
	for _, mode := range []Mode{ModeEDT, ModeSpheres} {
		got, err := Render(shape, zigzag, 2, Options{Mode: mode})
		require.NoError(t, err)

		for i := 1; i < len(zigzag); i++ {
			var seg *voxel.Mask
			if mode == ModeEDT {
				seg, err = voxel.EDTSegment(shape, zigzag[i-1], zigzag[i], 2)
			} else {
				seg, err = voxel.SpheresSegment(shape, zigzag[i-1], zigzag[i], 2)
			}
			require.NoError(t, err)
			assert.True(t, seg.Subset(got), "%s segment %d missing from union", mode, i)
		}
	}
}

func TestRender_WorkersMatchSequential(t *testing.T) {
	shape := [3]int{18, 20, 17}
	for _, mode := range []Mode{ModeEDT, ModeSpheres} {
		seq, err := Render(shape, zigzag, 2.5, Options{Mode: mode})
		require.NoError(t, err)

		for _, workers := range []int{2, 3, 8} {
			par, err := Render(shape, zigzag, 2.5, Options{Mode: mode, Workers: workers})
			require.NoError(t, err)
			assert.Equal(t, seq.Data, par.Data, "%s with %d workers", mode, workers)
		}
	}
}

func TestRender_ModesAgree(t *testing.T) {
	shape := [3]int{18, 20, 17}
	e, err := Render(shape, zigzag, 3, Options{Mode: ModeEDT})
	require.NoError(t, err)
	s, err := Render(shape, zigzag, 3, Options{Mode: ModeSpheres})
	require.NoError(t, err)
	assert.True(t, e.Equal(s))
}

func TestRender_MonotonicInRadius(t *testing.T) {
	shape := [3]int{18, 20, 17}
	var prev *voxel.Mask
	for _, r := range []float64{0, 1, 2, 3.5} {
		m, err := Render(shape, zigzag, r, Options{})
		require.NoError(t, err)
		if prev != nil {
			assert.True(t, prev.Subset(m), "radius %v", r)
		}
		prev = m
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := Render([3]int{4, -1, 4}, zigzag, 1, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSampleShape))

	_, err = Render([3]int{4, 4, 4}, zigzag, -2, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSampleSize))

	_, err = Render([3]int{4, 4, 4}, zigzag, 1, Options{Mode: "cones"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestRenderContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RenderContext(ctx, [3]int{18, 20, 17}, zigzag, 1, Options{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = RenderContext(ctx, [3]int{18, 20, 17}, zigzag, 1, Options{Workers: 4})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRender_VerticesFarOutside(t *testing.T) {
	shape := [3]int{4, 4, 4}
	vertices := [][3]float64{{0, 0, 0}, {1e13, 0, 0}, {1e13, 1e13, -1e13}}

	for _, mode := range []Mode{ModeSpheres, ModeEDT} {
		m, err := Render(shape, vertices, 1, Options{Mode: mode})
		require.NoError(t, err, mode)
		assert.Equal(t, uint8(1), m.At(3, 0, 0), mode)
		assert.Equal(t, uint8(0), m.At(0, 3, 3), mode)
	}

	m, err := Render(shape, [][3]float64{{-1e13, -1e13, -1e13}, {-1e12, -1e13, -1e13}}, 1, Options{})
	require.NoError(t, err)
	assert.Zero(t, m.Count(), "segments that miss the volume draw nothing")
}

func TestRender_NonFiniteVertices(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		for _, mode := range []Mode{ModeSpheres, ModeEDT} {
			_, err := Render([3]int{4, 4, 4}, [][3]float64{{0, 0, 0}, {v, 0, 0}}, 1, Options{Mode: mode})
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "%s %v: %v", mode, v, err)
		}
	}

	_, err := Render([3]int{4, 4, 4}, [][3]float64{{math.NaN(), 0, 0}}, 1, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "single vertex is still checked")
}
