package dataset

import (
	"errors"
	"fmt"

	"github.com/aridfield/thermacorrect/internal/catalog"
	"github.com/aridfield/thermacorrect/internal/monitoring"
	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/sampling"
	"github.com/aridfield/thermacorrect/internal/units"
)

// Builder turns catalogued crops into supervised training tables.
type Builder struct {
	Catalog *catalog.Catalog
	Reader  raster.Reader
	Sampler *sampling.Sampler
}

// NewBuilder wires a builder over a catalog, a raster reader and a sampler.
func NewBuilder(cat *catalog.Catalog, reader raster.Reader, sampler *sampling.Sampler) *Builder {
	return &Builder{Catalog: cat, Reader: reader, Sampler: sampler}
}

// cropRasters holds one crop fully loaded and shape-checked.
type cropRasters struct {
	side     int
	prior    *raster.Grid
	truth    *raster.Grid
	features map[string]*raster.Grid
}

// loadCrop reads every role of a crop and verifies all grids share the
// prior-model raster's square shape.
func (b *Builder) loadCrop(rec *catalog.CropRecord) (*cropRasters, error) {
	prior, err := b.Reader.Read(rec.PriorModel)
	if err != nil {
		return nil, fmt.Errorf("flight %s crop %d: %w", rec.Flight, rec.Crop, err)
	}
	if !prior.Square() {
		return nil, &RasterShapeMismatchError{
			Flight: rec.Flight, Crop: rec.Crop, Role: catalog.RolePriorModel,
			Rows: prior.Rows, Cols: prior.Cols, WantRows: prior.Rows, WantCols: prior.Rows,
		}
	}

	cr := &cropRasters{side: prior.Rows, prior: prior, features: make(map[string]*raster.Grid)}

	check := func(role, path string) (*raster.Grid, error) {
		g, err := b.Reader.Read(path)
		if err != nil {
			return nil, fmt.Errorf("flight %s crop %d: %w", rec.Flight, rec.Crop, err)
		}
		if !g.SameShape(prior) {
			return nil, &RasterShapeMismatchError{
				Flight: rec.Flight, Crop: rec.Crop, Role: role,
				Rows: g.Rows, Cols: g.Cols, WantRows: prior.Rows, WantCols: prior.Cols,
			}
		}
		return g, nil
	}

	if cr.truth, err = check(catalog.RoleGroundTruth, rec.GroundTruth); err != nil {
		return nil, err
	}
	for _, role := range catalog.FeatureRoles {
		if cr.features[role], err = check(role, rec.Features[role]); err != nil {
			return nil, err
		}
	}
	return cr, nil
}

// Build draws pixelsPerCrop samples from every crop of the requested flights
// and assembles one immutable training table, plus the per-crop sample masks
// kept for diagnostics.
//
// The residual target is priorModel − groundTruth − the Kelvin offset,
// centred by subtracting its per-crop mean so the regressor learns local
// patterns instead of redoing per-flight calibration. Rows with any invalid
// value are dropped. Crops whose rasters disagree on shape are skipped with a
// log line; an empty result is ErrInsufficientTrainingData.
func (b *Builder) Build(flights []string, pixelsPerCrop int) (*Table, map[string]*sampling.Mask, error) {
	table := &Table{Columns: FeatureColumns}
	masks := make(map[string]*sampling.Mask)

	for _, flight := range flights {
		crops := b.Catalog.Crops(flight)
		if len(crops) == 0 {
			monitoring.Logf("training: flight %s has no catalog entries, skipping", flight)
			continue
		}

		for _, rec := range crops {
			cr, err := b.loadCrop(rec)
			var shapeErr *RasterShapeMismatchError
			if errors.As(err, &shapeErr) {
				monitoring.Logf("training: skipping crop: %v", shapeErr)
				continue
			}
			if err != nil {
				return nil, nil, err
			}

			indices := b.Sampler.Indices(cr.side, pixelsPerCrop)
			key := catalog.CropKey{Flight: rec.Flight, Crop: rec.Crop}
			masks[key.String()] = sampling.NewMask(indices, cr.side)

			b.appendCrop(table, cr, indices)
			monitoring.Debugf("training: %s contributed %d samples", key, len(indices))
		}
	}

	table = table.dropInvalid()
	if table.NumRows() == 0 {
		return nil, nil, fmt.Errorf("flights %v: %w", flights, ErrInsufficientTrainingData)
	}
	return table, masks, nil
}

// appendCrop gathers the sampled pixels of one crop into the table.
func (b *Builder) appendCrop(table *Table, cr *cropRasters, indices []int) {
	prior := cr.prior.Gather(indices)
	truth := cr.truth.Gather(indices)

	residual := make([]float64, len(indices))
	for i := range residual {
		residual[i] = units.KelvinToCelsius(prior[i]) - truth[i]
	}
	mean := raster.NaNMean(residual)
	for i := range residual {
		residual[i] -= mean // NaN rows stay NaN and get filtered
	}

	gathered := make(map[string][]float64, len(cr.features))
	for role, g := range cr.features {
		gathered[role] = g.Gather(indices)
	}

	for i := range indices {
		row := make([]float64, 0, len(FeatureColumns))
		row = append(row, prior[i])
		for _, role := range catalog.FeatureRoles {
			row = append(row, gathered[role][i])
		}
		table.X = append(table.X, row)
		table.Y = append(table.Y, residual[i])
	}
}

// FullTable assembles the inference feature table for one crop: every pixel,
// no sampling, training column order. Returns the table and the raster side
// so the prediction can be reshaped back into a grid.
func (b *Builder) FullTable(rec *catalog.CropRecord) (*Table, int, error) {
	cr, err := b.loadCrop(rec)
	if err != nil {
		return nil, 0, err
	}

	n := cr.side * cr.side
	table := &Table{Columns: FeatureColumns, X: make([][]float64, n)}
	for i := 0; i < n; i++ {
		row := make([]float64, 0, len(FeatureColumns))
		row = append(row, cr.prior.Data[i])
		for _, role := range catalog.FeatureRoles {
			row = append(row, cr.features[role].Data[i])
		}
		table.X[i] = row
	}
	return table, cr.side, nil
}

// sanity check: the builder's schema covers every catalog feature role
func init() {
	if len(FeatureColumns) != len(catalog.FeatureRoles)+1 {
		panic("dataset: FeatureColumns out of sync with catalog.FeatureRoles")
	}
	for i, role := range catalog.FeatureRoles {
		if roleColumns[role] != FeatureColumns[i+1] {
			panic("dataset: no column mapped for catalog role " + role)
		}
	}
}
