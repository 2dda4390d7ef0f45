package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/units"
)

func TestDescribeGrid(t *testing.T) {
	g := raster.NewGrid(2, 2)
	copy(g.Data, []float64{290.16, 300.16, math.NaN(), 295.0})

	assert.Equal(t, "2x2 17.0..27.0 celsius", describeGrid(g, units.Celsius))
	assert.Equal(t, "2x2 290.2..300.2 kelvin", describeGrid(g, units.Kelvin))

	empty := raster.NewGrid(1, 2)
	empty.Data[0] = math.NaN()
	empty.Data[1] = math.NaN()
	assert.Equal(t, "1x2 all no-data", describeGrid(empty, units.Celsius))
}
