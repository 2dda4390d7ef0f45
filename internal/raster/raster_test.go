package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridfield/thermacorrect/internal/fsutil"
)

func TestGrid_Basics(t *testing.T) {
	t.Parallel()

	g := NewGrid(2, 3)
	assert.False(t, g.Square())
	g.Set(1, 2, 7.5)
	assert.Equal(t, 7.5, g.At(1, 2))
	assert.Equal(t, 7.5, g.Data[5]) // row-major

	sq := NewGrid(4, 4)
	assert.True(t, sq.Square())
	assert.False(t, g.SameShape(sq))
	assert.True(t, g.SameShape(NewGrid(2, 3)))
}

func TestFromFlat(t *testing.T) {
	t.Parallel()

	g, err := FromFlat([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, g.At(1, 0))

	_, err = FromFlat([]float64{1, 2, 3}, 2, 2)
	assert.Error(t, err)
}

func TestGrid_Gather(t *testing.T) {
	t.Parallel()

	g, err := FromFlat([]float64{10, 11, 12, 13}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{13, 10, 10}, g.Gather([]int{3, 0, 0}))
}

func TestNaNMean(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	assert.InDelta(t, 2, NaNMean([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 2, NaNMean([]float64{1, nan, 3}), 1e-12)
	assert.True(t, math.IsNaN(NaNMean([]float64{nan, nan})))
	assert.True(t, math.IsNaN(NaNMean(nil)))
}

func TestMemory_RoundTrip(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	g := NewGrid(4, 4)
	require.NoError(t, m.Write("a.tif", g))

	got, err := m.Read("a.tif")
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = m.Read("b.tif")
	assert.Error(t, err)
}

func TestNpyWriter(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	w := NewNpyWriter(mfs)

	g, err := FromFlat([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	require.NoError(t, w.Write("out/maps/corr", g))

	// extension appended, parent dirs created
	data, err := mfs.ReadFile("out/maps/corr.npy")
	require.NoError(t, err)
	require.Greater(t, len(data), 6)
	assert.Equal(t, "\x93NUMPY", string(data[:6]))
}
