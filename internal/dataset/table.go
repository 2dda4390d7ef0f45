// Package dataset assembles supervised tables from catalogued rasters.
package dataset

import (
	"errors"
	"fmt"
	"math"
)

// FeatureColumns is the regressor's feature schema, in column order. PredM1
// rides along as a feature so the model can condition on the prior
// prediction itself.
var FeatureColumns = []string{"PredM1", "TGI", "Height", "Shade", "RealSolar", "Skyview"}

// TargetColumn is the mean-centred residual of the prior model.
const TargetColumn = "PredErrorM1"

// roleColumns maps catalog feature roles to their schema column names.
var roleColumns = map[string]string{
	"TGI":        "TGI",
	"height":     "Height",
	"shade":      "Shade",
	"real_solar": "RealSolar",
	"skyview":    "Skyview",
}

// ErrInsufficientTrainingData means the table was empty after invalid-row
// filtering. Fatal to the current training call.
var ErrInsufficientTrainingData = errors.New("training table is empty after invalid-row filtering")

// RasterShapeMismatchError reports per-crop raster dimension disagreement.
type RasterShapeMismatchError struct {
	Flight             string
	Crop               int
	Role               string
	Rows, Cols         int
	WantRows, WantCols int
}

func (e *RasterShapeMismatchError) Error() string {
	return fmt.Sprintf("flight %s crop %d: raster %s is %d×%d, want %d×%d",
		e.Flight, e.Crop, e.Role, e.Rows, e.Cols, e.WantRows, e.WantCols)
}

// Table is a flat supervised table: one row per sampled pixel. X holds the
// feature values in FeatureColumns order; Y holds the target and is empty for
// inference tables. A Table is built once and read-only afterwards.
type Table struct {
	Columns []string
	X       [][]float64
	Y       []float64
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return len(t.X)
}

// NumFeatures returns the feature column count.
func (t *Table) NumFeatures() int {
	return len(t.Columns)
}

// dropInvalid removes rows containing NaN in any feature or, when present,
// the target.
func (t *Table) dropInvalid() *Table {
	out := &Table{Columns: t.Columns}
	hasY := len(t.Y) == len(t.X)
rows:
	for i, row := range t.X {
		for _, v := range row {
			if math.IsNaN(v) {
				continue rows
			}
		}
		if hasY && math.IsNaN(t.Y[i]) {
			continue
		}
		out.X = append(out.X, row)
		if hasY {
			out.Y = append(out.Y, t.Y[i])
		}
	}
	return out
}
