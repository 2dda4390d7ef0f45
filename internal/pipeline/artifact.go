package pipeline

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"path/filepath"

	"github.com/aridfield/thermacorrect/internal/catalog"
	"github.com/aridfield/thermacorrect/internal/config"
	"github.com/aridfield/thermacorrect/internal/forest"
	"github.com/aridfield/thermacorrect/internal/fsutil"
	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/sampling"
)

// Artifact is the serialized state of a completed training run: the fitted
// model, the catalog it was trained against and the tuning snapshot. It is
// written as a single opaque gob blob and is not meant to be edited.
type Artifact struct {
	Model        *forest.FittedModel
	Catalog      *catalog.Catalog
	TrainFlights []string
	Config       *config.PipelineConfig
}

// SaveArtifact persists the pipeline's fitted state. Fails if Fit has not
// been run.
func (p *Pipeline) SaveArtifact(fsys fsutil.FileSystem, path string) error {
	if p.model == nil {
		return fmt.Errorf("no fitted model to save")
	}
	art := Artifact{
		Model:        p.model,
		Catalog:      p.Catalog,
		TrainFlights: p.trainFlights,
		Config:       p.Config,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&art); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// LoadArtifact restores a saved run. The returned pipeline can run Test
// immediately; Train state (table, masks) is not part of the artifact.
func LoadArtifact(fsys fsutil.FileSystem, path string, reader raster.Reader, sampler *sampling.Sampler) (*Pipeline, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	var art Artifact
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&art); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if art.Model == nil || art.Catalog == nil {
		return nil, fmt.Errorf("artifact %s is missing model or catalog state", path)
	}
	p := New(art.Catalog, art.Config, reader, sampler)
	p.model = art.Model
	p.trainFlights = art.TrainFlights
	return p, nil
}
