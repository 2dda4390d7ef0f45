// Package report evaluates correction maps against ground truth and persists
// the per-crop statistics: a sqlite store for run history, CSV export for
// spreadsheets and plots for eyeballing model quality.
package report

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/aridfield/thermacorrect/internal/catalog"
	"github.com/aridfield/thermacorrect/internal/config"
	"github.com/aridfield/thermacorrect/internal/monitoring"
	"github.com/aridfield/thermacorrect/internal/pipeline"
	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/units"
)

// MapStats summarizes one correction map over vegetation pixels, before and
// after applying the correction. Units are Celsius.
type MapStats struct {
	Flight    string  `csv:"flight"`
	Crop      int     `csv:"crop"`
	Name      string  `csv:"name"`
	VegPixels int     `csv:"veg_pixels"`
	MEBefore  float64 `csv:"me_before"`
	MAEBefore float64 `csv:"mae_before"`
	StdBefore float64 `csv:"std_before"`
	MADBefore float64 `csv:"mad_before"`
	MEAfter   float64 `csv:"me_after"`
	MAEAfter  float64 `csv:"mae_after"`
	StdAfter  float64 `csv:"std_after"`
	MADAfter  float64 `csv:"mad_after"`
}

// Summarize computes per-crop statistics for every inference result. Crops
// whose raw error is implausibly large, or which have no vegetation pixels,
// are skipped with a log line rather than failing the run.
func Summarize(reader raster.Reader, cat *catalog.Catalog, results []pipeline.InferenceResult, cfg *config.PipelineConfig) ([]MapStats, error) {
	var out []MapStats
	for _, res := range results {
		rec, ok := cat.Records[res.Key]
		if !ok {
			return nil, fmt.Errorf("summary: no catalog record for %s", res.Key)
		}
		stats, err := summarizeCrop(reader, rec, res, cfg)
		if err != nil {
			return nil, err
		}
		if stats == nil {
			continue
		}
		out = append(out, *stats)
	}
	return out, nil
}

func summarizeCrop(reader raster.Reader, rec *catalog.CropRecord, res pipeline.InferenceResult, cfg *config.PipelineConfig) (*MapStats, error) {
	prior, err := reader.Read(rec.PriorModel)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	truth, err := reader.Read(rec.GroundTruth)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	tgi, err := reader.Read(rec.Features[catalog.RoleTGI])
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	corr := res.Correction
	if !prior.SameShape(truth) || !prior.SameShape(tgi) || !prior.SameShape(corr) {
		monitoring.Logf("summary: skipping %s: raster shapes disagree", res.Key)
		return nil, nil
	}

	// raw model error in Celsius, and the same error with the predicted
	// residual removed
	var before, after []float64
	var rawSum float64
	var rawN int
	threshold := cfg.GetVegetationThreshold()
	for i := range prior.Data {
		raw := units.KelvinToCelsius(prior.Data[i]) - truth.Data[i]
		if math.IsNaN(raw) {
			continue
		}
		rawSum += raw
		rawN++
		if tgi.Data[i] > threshold && !math.IsNaN(corr.Data[i]) {
			before = append(before, raw)
			after = append(after, raw-corr.Data[i])
		}
	}

	if rawN == 0 || len(before) == 0 {
		monitoring.Logf("summary: skipping %s: no usable vegetation pixels", res.Key)
		return nil, nil
	}
	if mean := rawSum / float64(rawN); math.Abs(mean) > cfg.GetSanityLimitK() {
		monitoring.Logf("summary: skipping %s: raw mean error %.1f exceeds sanity limit", res.Key, mean)
		return nil, nil
	}

	s := &MapStats{
		Flight:    rec.Flight,
		Crop:      rec.Crop,
		Name:      res.Name,
		VegPixels: len(before),
	}
	s.MEBefore, s.MAEBefore, s.StdBefore, s.MADBefore = errorStats(before)
	s.MEAfter, s.MAEAfter, s.StdAfter, s.MADAfter = errorStats(after)
	return s, nil
}

// errorStats returns mean error, mean absolute error, standard deviation and
// median absolute deviation of the given errors.
func errorStats(errs []float64) (me, mae, std, mad float64) {
	me = stat.Mean(errs, nil)
	for _, e := range errs {
		mae += math.Abs(e)
	}
	mae /= float64(len(errs))
	if len(errs) > 1 {
		std = stat.StdDev(errs, nil)
	}

	sorted := append([]float64(nil), errs...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	devs := make([]float64, len(errs))
	for i, e := range errs {
		devs[i] = math.Abs(e - median)
	}
	sort.Float64s(devs)
	mad = stat.Quantile(0.5, stat.Empirical, devs, nil)
	return me, mae, std, mad
}
