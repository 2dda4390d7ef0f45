// Package pipeline composes the catalog, sampler, dataset builder, regressor
// and raster sinks into the explicit training/inference sequence. All paths
// and flight sets are passed in; nothing is read from process-wide state.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/aridfield/thermacorrect/internal/catalog"
	"github.com/aridfield/thermacorrect/internal/config"
	"github.com/aridfield/thermacorrect/internal/dataset"
	"github.com/aridfield/thermacorrect/internal/forest"
	"github.com/aridfield/thermacorrect/internal/monitoring"
	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/sampling"
)

// correctionSuffix is appended to the prior-model filename base when naming
// correction maps.
const correctionSuffix = "_Correction_map"

// Pipeline owns the catalog, the fitted model and the sample masks for the
// lifetime of a run.
type Pipeline struct {
	Catalog *catalog.Catalog
	Config  *config.PipelineConfig

	builder      *dataset.Builder
	trainFlights []string
	table        *dataset.Table
	masks        map[string]*sampling.Mask
	model        *forest.FittedModel
}

// InferenceResult is one held-out crop's correction map, kept only long
// enough for summary statistics; the sink already holds the persisted copy.
type InferenceResult struct {
	Key        catalog.CropKey
	Name       string
	Correction *raster.Grid
}

// New assembles a pipeline over a discovered catalog.
func New(cat *catalog.Catalog, cfg *config.PipelineConfig, reader raster.Reader, sampler *sampling.Sampler) *Pipeline {
	return &Pipeline{
		Catalog: cat,
		Config:  cfg,
		builder: dataset.NewBuilder(cat, reader, sampler),
	}
}

// Train builds the supervised table from the given flights. A crop-level
// shape mismatch skips that crop; an empty table is fatal.
func (p *Pipeline) Train(flights []string, pixelsPerCrop int) error {
	table, masks, err := p.builder.Build(flights, pixelsPerCrop)
	if err != nil {
		return err
	}
	p.trainFlights = append([]string(nil), flights...)
	p.table = table
	p.masks = masks
	monitoring.Logf("training table: %d rows × %d features from %d crops",
		table.NumRows(), table.NumFeatures(), len(masks))
	return nil
}

// Table exposes the training table for diagnostics (scatter plots). Nil
// before Train.
func (p *Pipeline) Table() *dataset.Table {
	return p.table
}

// Masks exposes the per-crop sample masks. Nil before Train.
func (p *Pipeline) Masks() map[string]*sampling.Mask {
	return p.masks
}

// Model exposes the fitted model. Nil before Fit.
func (p *Pipeline) Model() *forest.FittedModel {
	return p.model
}

// TrainFlights returns the flights used for the current training table.
func (p *Pipeline) TrainFlights() []string {
	return p.trainFlights
}

// Fit trains the forest on the built table and retains the fitted model,
// replacing any previous one.
func (p *Pipeline) Fit() (*forest.FittedModel, error) {
	if p.table == nil {
		return nil, errors.New("no training table: call Train before Fit")
	}
	model, err := forest.Fit(p.table)
	if err != nil {
		return nil, err
	}
	p.model = model
	monitoring.Logf("r²: RF = %.3f", model.R2)
	importances := model.ImportanceByColumn()
	for _, col := range model.Columns {
		monitoring.Debugf("importance %-10s %.4f", col, importances[col])
	}
	return model, nil
}

// HeldOutFlights lists catalog flights not used for training, sorted.
func (p *Pipeline) HeldOutFlights() []string {
	inTrain := make(map[string]bool, len(p.trainFlights))
	for _, f := range p.trainFlights {
		inTrain[f] = true
	}
	var held []string
	for _, f := range p.Catalog.Flights() {
		if !inTrain[f] {
			held = append(held, f)
		}
	}
	return held
}

// Test runs inference over every held-out crop: full-resolution feature
// table, predict, reshape row-major to the raster grid, persist through the
// sink under outDir. Crop-level failures are skipped with a log line.
func (p *Pipeline) Test(outDir string, sink raster.Writer) ([]InferenceResult, error) {
	if p.model == nil {
		return nil, errors.New("no fitted model: call Fit before Test")
	}

	held := p.HeldOutFlights()
	total := 0
	for _, flight := range held {
		total += len(p.Catalog.Crops(flight))
	}
	bar := progressbar.Default(int64(total), "correction maps")

	var results []InferenceResult
	for _, flight := range held {
		for _, rec := range p.Catalog.Crops(flight) {
			bar.Add(1)

			table, side, err := p.builder.FullTable(rec)
			var shapeErr *dataset.RasterShapeMismatchError
			if errors.As(err, &shapeErr) {
				monitoring.Logf("inference: skipping crop: %v", shapeErr)
				continue
			}
			if err != nil {
				return nil, err
			}

			predictions, err := p.model.Predict(table)
			if err != nil {
				// schema errors are fatal: the catalog and model disagree
				return nil, fmt.Errorf("flight %s crop %d: %w", rec.Flight, rec.Crop, err)
			}

			grid, err := raster.FromFlat(predictions, side, side)
			if err != nil {
				return nil, fmt.Errorf("flight %s crop %d: %w", rec.Flight, rec.Crop, err)
			}

			name := correctionName(rec.PriorModel)
			if err := sink.Write(filepath.Join(outDir, name), grid); err != nil {
				return nil, fmt.Errorf("flight %s crop %d: %w", rec.Flight, rec.Crop, err)
			}

			results = append(results, InferenceResult{
				Key:        catalog.CropKey{Flight: rec.Flight, Crop: rec.Crop},
				Name:       name,
				Correction: grid,
			})
		}
	}

	monitoring.Logf("inference: wrote %d correction maps for %d held-out flights", len(results), len(held))
	return results, nil
}

// SaveMasks persists the training sample masks as 0/1 grids next to the
// correction maps, for coverage diagnostics.
func (p *Pipeline) SaveMasks(outDir string, sink raster.Writer) error {
	for key, mask := range p.masks {
		grid := raster.NewGrid(mask.N, mask.N)
		for i, set := range mask.Cells {
			if set {
				grid.Data[i] = 1
			}
		}
		if err := sink.Write(filepath.Join(outDir, key+"_sample_mask"), grid); err != nil {
			return fmt.Errorf("failed to persist mask %s: %w", key, err)
		}
	}
	return nil
}

// correctionName derives the output name from the prior-model filename:
// extension stripped, correction suffix appended.
func correctionName(priorModelPath string) string {
	base := filepath.Base(priorModelPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + correctionSuffix
}
