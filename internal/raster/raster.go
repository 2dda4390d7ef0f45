// Package raster is the pipeline's raster I/O collaborator. The core only
// ever sees dense float64 grids with NaN as the no-data value; format
// handling stays behind the Reader and Writer interfaces.
package raster

import (
	"fmt"
	"math"
)

// Grid is a dense row-major raster. No-data cells are NaN.
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// NewGrid allocates a zero-filled grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// FromFlat wraps a flat row-major slice as a grid. The slice is not copied.
func FromFlat(data []float64, rows, cols int) (*Grid, error) {
	if len(data) != rows*cols {
		return nil, fmt.Errorf("flat data has %d values, want %d×%d=%d", len(data), rows, cols, rows*cols)
	}
	return &Grid{Rows: rows, Cols: cols, Data: data}, nil
}

// At returns the value at (row, col).
func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.Cols+col]
}

// Set stores a value at (row, col).
func (g *Grid) Set(row, col int, v float64) {
	g.Data[row*g.Cols+col] = v
}

// Square reports whether the grid has equal sides.
func (g *Grid) Square() bool {
	return g.Rows == g.Cols
}

// SameShape reports whether two grids have identical dimensions.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// Gather indexes the grid's flat data at the given positions. Out-of-range
// indices are the caller's bug and panic, matching slice semantics.
func (g *Grid) Gather(indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = g.Data[idx]
	}
	return out
}

// NaNMean returns the mean of the non-NaN values, or NaN if none exist.
func NaNMean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Reader loads a raster from a path.
type Reader interface {
	Read(path string) (*Grid, error)
}

// Writer persists a correction map (or any grid) under a path.
type Writer interface {
	Write(path string, g *Grid) error
}

// Memory is an in-memory Reader and Writer for tests.
type Memory struct {
	Grids map[string]*Grid
}

// NewMemory returns an empty in-memory raster store.
func NewMemory() *Memory {
	return &Memory{Grids: make(map[string]*Grid)}
}

// Read returns the stored grid for path.
func (m *Memory) Read(path string) (*Grid, error) {
	g, ok := m.Grids[path]
	if !ok {
		return nil, fmt.Errorf("no raster stored at %q", path)
	}
	return g, nil
}

// Write stores the grid under path.
func (m *Memory) Write(path string, g *Grid) error {
	m.Grids[path] = g
	return nil
}
