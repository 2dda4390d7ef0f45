package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridfield/thermacorrect/internal/catalog"
	"github.com/aridfield/thermacorrect/internal/config"
	"github.com/aridfield/thermacorrect/internal/pipeline"
	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/testutil"
	"github.com/aridfield/thermacorrect/internal/units"
)

// fixtureResult builds one inference result for flight/crop with the given
// correction values (zeroes when nil).
func fixtureResult(t *testing.T, fx *testutil.Fixture, flight string, crop, side int, corr []float64) pipeline.InferenceResult {
	t.Helper()
	grid := raster.NewGrid(side, side)
	if corr != nil {
		require.Len(t, corr, side*side)
		copy(grid.Data, corr)
	}
	return pipeline.InferenceResult{
		Key:        catalog.CropKey{Flight: flight, Crop: crop},
		Name:       "M1_Correction_map",
		Correction: grid,
	}
}

func TestSummarize(t *testing.T) {
	const side = 4
	fx := testutil.NewFixture(side, map[string]int{"A": 1})
	cfg := config.DefaultConfig()

	// fixture TGI is 0.1*row + 0.01*col, so row 0 sits below the default
	// vegetation threshold and rows 1..3 (12 pixels) are vegetation
	t.Run("zero correction leaves before equal to after", func(t *testing.T) {
		res := fixtureResult(t, fx, "A", 0, side, nil)
		stats, err := Summarize(fx.Rasters, fx.Catalog, []pipeline.InferenceResult{res}, cfg)
		require.NoError(t, err)
		require.Len(t, stats, 1)

		s := stats[0]
		assert.Equal(t, "A", s.Flight)
		assert.Equal(t, 12, s.VegPixels)
		// raw error is 1.5 + 0.05*row; vegetation rows average to 1.6
		assert.InDelta(t, 1.6, s.MEBefore, 1e-9)
		assert.InDelta(t, 1.6, s.MAEBefore, 1e-9)
		assert.Equal(t, s.MEBefore, s.MEAfter)
		assert.Equal(t, s.StdBefore, s.StdAfter)
		assert.Equal(t, s.MADBefore, s.MADAfter)
	})

	t.Run("perfect correction collapses after stats", func(t *testing.T) {
		prior, err := fx.Rasters.Read(fx.Catalog.Records[catalog.CropKey{Flight: "A", Crop: 0}].PriorModel)
		require.NoError(t, err)
		truth, err := fx.Rasters.Read(fx.Catalog.Records[catalog.CropKey{Flight: "A", Crop: 0}].GroundTruth)
		require.NoError(t, err)

		corr := make([]float64, side*side)
		for i := range corr {
			corr[i] = units.KelvinToCelsius(prior.Data[i]) - truth.Data[i] - 1.0
		}
		res := fixtureResult(t, fx, "A", 0, side, corr)
		stats, err := Summarize(fx.Rasters, fx.Catalog, []pipeline.InferenceResult{res}, cfg)
		require.NoError(t, err)
		require.Len(t, stats, 1)

		s := stats[0]
		assert.InDelta(t, 1.0, s.MEAfter, 1e-9)
		assert.InDelta(t, 0.0, s.StdAfter, 1e-9)
		assert.InDelta(t, 0.0, s.MADAfter, 1e-9)
	})

	t.Run("sanity limit skips implausible maps", func(t *testing.T) {
		limit := 0.5 // fixture raw error mean is ~1.575
		tight := config.DefaultConfig()
		tight.SanityLimitK = &limit

		res := fixtureResult(t, fx, "A", 0, side, nil)
		stats, err := Summarize(fx.Rasters, fx.Catalog, []pipeline.InferenceResult{res}, tight)
		require.NoError(t, err)
		assert.Empty(t, stats)
	})

	t.Run("no vegetation pixels skips the map", func(t *testing.T) {
		threshold := 100.0
		bare := config.DefaultConfig()
		bare.VegetationThreshold = &threshold

		res := fixtureResult(t, fx, "A", 0, side, nil)
		stats, err := Summarize(fx.Rasters, fx.Catalog, []pipeline.InferenceResult{res}, bare)
		require.NoError(t, err)
		assert.Empty(t, stats)
	})

	t.Run("unknown crop fails", func(t *testing.T) {
		res := fixtureResult(t, fx, "Z", 9, side, nil)
		_, err := Summarize(fx.Rasters, fx.Catalog, []pipeline.InferenceResult{res}, cfg)
		assert.ErrorContains(t, err, "no catalog record")
	})
}

func TestErrorStats(t *testing.T) {
	me, mae, std, mad := errorStats([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, me, 1e-9)
	assert.InDelta(t, 2.5, mae, 1e-9)
	assert.InDelta(t, 1.2909944487, std, 1e-9)
	assert.InDelta(t, 1.0, mad, 1e-9)

	me, mae, std, mad = errorStats([]float64{-2, 2})
	assert.InDelta(t, 0.0, me, 1e-9)
	assert.InDelta(t, 2.0, mae, 1e-9)
	assert.Greater(t, std, 0.0)
	assert.GreaterOrEqual(t, mad, 0.0)
}
