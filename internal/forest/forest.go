// Package forest implements the tree-ensemble regressor that learns the
// prior model's residual error.
//
// The hyperparameters are fixed by contract: 100 trees, depth 10, seed 42.
// The seed is the single deterministic element of the whole pipeline; it must
// never change or archived results stop being reproducible. Inference is
// fully deterministic.
package forest

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/aridfield/thermacorrect/internal/dataset"
)

// Fixed hyperparameters.
const (
	NumTrees        = 100
	MaxDepth        = 10
	MinSamplesSplit = 2
	Seed            = 42
)

// SchemaMismatchError reports a prediction table whose feature columns don't
// match the training schema.
type SchemaMismatchError struct {
	Got  []string
	Want []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature columns %v do not match training schema %v", e.Got, e.Want)
}

// FittedModel is a trained forest plus its derived diagnostics. It is
// read-only after Fit; retraining replaces the whole value.
type FittedModel struct {
	Columns     []string
	Trees       []Tree
	Importances []float64 // non-negative, summing to 1
	R2          float64   // in-sample goodness of fit
}

// Fit trains the forest on the table. Each tree sees a bootstrap resample of
// the rows; splits are exact CART variance-reduction searches over all
// features.
func Fit(table *dataset.Table) (*FittedModel, error) {
	if table.NumRows() == 0 {
		return nil, dataset.ErrInsufficientTrainingData
	}

	rnd := rand.New(rand.NewSource(Seed))
	m := &FittedModel{
		Columns: append([]string(nil), table.Columns...),
		Trees:   make([]Tree, 0, NumTrees),
	}

	importances := make([]float64, table.NumFeatures())
	for t := 0; t < NumTrees; t++ {
		b := &treeBuilder{
			x:        table.X,
			y:        table.Y,
			maxDepth: MaxDepth,
			minSplit: MinSamplesSplit,
			gains:    make([]float64, table.NumFeatures()),
		}
		m.Trees = append(m.Trees, b.grow(bootstrap(rnd, table.NumRows())))

		// average of per-tree normalized gains, as scikit-learn does
		total := 0.0
		for _, g := range b.gains {
			total += g
		}
		if total > 0 {
			for f, g := range b.gains {
				importances[f] += g / total
			}
		}
	}

	total := 0.0
	for _, v := range importances {
		total += v
	}
	if total > 0 {
		for f := range importances {
			importances[f] /= total
		}
	}
	m.Importances = importances

	predictions := m.predictRows(table.X)
	m.R2 = stat.RSquaredFrom(predictions, table.Y, nil)
	return m, nil
}

// Predict returns one residual prediction per table row. The table's feature
// columns must match the training schema exactly, names and order both.
func (m *FittedModel) Predict(table *dataset.Table) ([]float64, error) {
	if err := m.checkSchema(table.Columns); err != nil {
		return nil, err
	}
	return m.predictRows(table.X), nil
}

func (m *FittedModel) predictRows(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		sum := 0.0
		for t := range m.Trees {
			sum += m.Trees[t].predict(row)
		}
		out[i] = sum / float64(len(m.Trees))
	}
	return out
}

func (m *FittedModel) checkSchema(columns []string) error {
	if len(columns) != len(m.Columns) {
		return &SchemaMismatchError{Got: columns, Want: m.Columns}
	}
	for i, c := range columns {
		if c != m.Columns[i] {
			return &SchemaMismatchError{Got: columns, Want: m.Columns}
		}
	}
	return nil
}

// ImportanceByColumn pairs each feature column with its importance score.
func (m *FittedModel) ImportanceByColumn() map[string]float64 {
	out := make(map[string]float64, len(m.Columns))
	for i, c := range m.Columns {
		out[c] = m.Importances[i]
	}
	return out
}

// Encode serializes the fitted model with gob.
func (m *FittedModel) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode fitted model: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reconstructs a fitted model from gob bytes. The result predicts
// identically to the encoded original.
func Decode(data []byte) (*FittedModel, error) {
	var m FittedModel
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode fitted model: %w", err)
	}
	return &m, nil
}
