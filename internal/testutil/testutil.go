// Package testutil provides shared fixtures for pipeline tests.
//
// The fixtures build in-memory catalogs and raster stores with synthetic but
// deterministic pixel values, so dataset and pipeline tests never touch the
// real filesystem or raster formats.
package testutil

import (
	"fmt"
	"math"

	"github.com/aridfield/thermacorrect/internal/catalog"
	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/units"
)

// Fixture bundles a synthetic catalog with the raster store backing it.
type Fixture struct {
	Catalog *catalog.Catalog
	Rasters *raster.Memory
}

// NewFixture builds a fixture with the given raster side and a crop count per
// flight. Every crop gets all roles with deterministic values.
func NewFixture(side int, flights map[string]int) *Fixture {
	f := &Fixture{
		Catalog: &catalog.Catalog{Root: "mem", Records: make(map[catalog.CropKey]*catalog.CropRecord)},
		Rasters: raster.NewMemory(),
	}
	for flight, crops := range flights {
		for crop := 0; crop < crops; crop++ {
			f.SeedCrop(flight, crop, side)
		}
	}
	return f
}

// SeedCrop registers one (flight, crop) record and stores synthetic rasters
// for every role. The prior model runs warmer than the measured IR by the
// Kelvin offset plus a pixel-dependent residual, so trained models have real
// structure to find.
func (f *Fixture) SeedCrop(flight string, crop, side int) {
	key := catalog.CropKey{Flight: flight, Crop: crop}
	rec := &catalog.CropRecord{
		Flight:      flight,
		Crop:        crop,
		PriorModel:  rolePath(key, catalog.RolePriorModel),
		GroundTruth: rolePath(key, catalog.RoleGroundTruth),
		Features:    make(map[string]string),
	}

	n := side * side
	truth := make([]float64, n) // Celsius
	prior := make([]float64, n) // Kelvin
	for i := 0; i < n; i++ {
		truth[i] = 24 + 0.01*float64(i%side)
		// residual depends on pixel position, i.e. on the feature values below
		prior[i] = units.CelsiusToKelvin(truth[i]) + 1.5 + 0.05*float64(i/side)
	}
	f.putGrid(rec.PriorModel, prior, side)
	f.putGrid(rec.GroundTruth, truth, side)

	for fi, role := range catalog.FeatureRoles {
		rec.Features[role] = rolePath(key, role)
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			vals[i] = float64(fi) + 0.1*float64(i/side) + 0.01*float64(i%side)
		}
		f.putGrid(rec.Features[role], vals, side)
	}

	f.Catalog.Records[key] = rec
}

// PoisonPixel sets one pixel of one role raster to NaN, emulating a raster
// no-data cell.
func (f *Fixture) PoisonPixel(flight string, crop int, role string, idx int) {
	key := catalog.CropKey{Flight: flight, Crop: crop}
	g, err := f.Rasters.Read(rolePath(key, role))
	if err != nil {
		panic(fmt.Sprintf("testutil: poisoning unknown raster: %v", err))
	}
	g.Data[idx] = math.NaN()
}

// ReshapeRole replaces one role raster with a differently sized grid to
// provoke shape-mismatch handling.
func (f *Fixture) ReshapeRole(flight string, crop int, role string, rows, cols int) {
	key := catalog.CropKey{Flight: flight, Crop: crop}
	f.Rasters.Grids[rolePath(key, role)] = raster.NewGrid(rows, cols)
}

func (f *Fixture) putGrid(path string, data []float64, side int) {
	f.Rasters.Grids[path] = &raster.Grid{Rows: side, Cols: side, Data: data}
}

func rolePath(key catalog.CropKey, role string) string {
	return fmt.Sprintf("mem/%s/%s.tif", key, role)
}
