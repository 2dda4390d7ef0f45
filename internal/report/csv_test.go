package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridfield/thermacorrect/internal/fsutil"
)

func TestCSVRoundTrip(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	stats := sampleStats()

	require.NoError(t, WriteCSV(fs, "out/summary.csv", stats))

	raw, err := fs.ReadFile("out/summary.csv")
	require.NoError(t, err)
	header := strings.SplitN(string(raw), "\n", 2)[0]
	assert.Contains(t, header, "me_before")
	assert.Contains(t, header, "mad_after")

	got, err := ReadCSV(fs, "out/summary.csv")
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestReadCSVMissingFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	_, err := ReadCSV(fs, "nope.csv")
	assert.Error(t, err)
}
