package raster

import (
	"fmt"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/aridfield/thermacorrect/internal/fsutil"
)

// NpyWriter persists grids as NumPy .npy arrays, the flat numeric format the
// downstream analysis tooling consumes. Output paths get a .npy extension if
// the caller didn't supply one.
type NpyWriter struct {
	fs fsutil.FileSystem
}

// NewNpyWriter returns a writer backed by the given filesystem.
func NewNpyWriter(fs fsutil.FileSystem) *NpyWriter {
	return &NpyWriter{fs: fs}
}

// Write serializes the grid row-major to path.
func (w *NpyWriter) Write(path string, g *Grid) error {
	if filepath.Ext(path) != ".npy" {
		path += ".npy"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir %s: %w", dir, err)
		}
	}

	f, err := w.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := npyio.Write(f, mat.NewDense(g.Rows, g.Cols, g.Data)); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
