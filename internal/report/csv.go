package report

import (
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/aridfield/thermacorrect/internal/fsutil"
)

// WriteCSV exports the per-crop statistics as a CSV file with a header row.
func WriteCSV(fsys fsutil.FileSystem, path string, stats []MapStats) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.Marshal(stats, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadCSV loads previously exported statistics, mostly for ad-hoc
// comparisons between runs.
func ReadCSV(fsys fsutil.FileSystem, path string) ([]MapStats, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	var stats []MapStats
	if err := gocsv.Unmarshal(f, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return stats, nil
}
