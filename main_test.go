package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aridfield/thermacorrect/internal/fsutil"
)

func TestResolveDataRoot(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.MkdirAll("data/flights", 0o755))

	t.Run("flag wins", func(t *testing.T) {
		root, err := resolveDataRoot(fs, "data/flights")
		require.NoError(t, err)
		assert.Equal(t, "data/flights", root)
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("DATA_ROOT", "data/flights")
		root, err := resolveDataRoot(fs, "")
		require.NoError(t, err)
		assert.Equal(t, "data/flights", root)
	})

	t.Run("unset", func(t *testing.T) {
		t.Setenv("DATA_ROOT", "")
		_, err := resolveDataRoot(fs, "")
		assert.ErrorContains(t, err, "no data root")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := resolveDataRoot(fs, "elsewhere")
		assert.ErrorContains(t, err, "does not exist")
	})
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"F1", "F2"}, splitCSV("F1,F2"))
	assert.Equal(t, []string{"F1", "F2"}, splitCSV(" F1 , F2 "))
	assert.Equal(t, []string{"F1"}, splitCSV("F1,"))
	assert.Empty(t, splitCSV(""))
	assert.Empty(t, splitCSV(" , "))
}
