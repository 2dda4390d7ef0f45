package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()

	assert.Equal(t, 1000, cfg.GetPixelsPerCrop())
	assert.Equal(t, 0.04, cfg.GetVegetationThreshold())
	assert.Equal(t, 1000.0, cfg.GetSanityLimitK())
	assert.Equal(t, 1000, cfg.GetScatterSample())
	assert.False(t, cfg.GetVerbose())
}

func TestLoad_PartialConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `{"pixels_per_crop": 250, "verbose": true}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.GetPixelsPerCrop())
	assert.True(t, cfg.GetVerbose())
	// untouched fields keep their defaults
	assert.Equal(t, 0.04, cfg.GetVegetationThreshold())
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("wrong extension", func(t *testing.T) {
		t.Parallel()
		_, err := Load("tuning.yaml")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("bad JSON", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, `{`))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeConfig(t, `{"pixels_per_crop": -5}`))
		assert.Error(t, err)
		_, err = Load(writeConfig(t, `{"sanity_limit_k": 0}`))
		assert.Error(t, err)
		_, err = Load(writeConfig(t, `{"scatter_sample": 0}`))
		assert.Error(t, err)
	})
}
