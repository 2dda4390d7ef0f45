// Package config loads the pipeline tuning file.
//
// Model hyperparameters (tree count, depth, seed) are deliberately absent:
// they are fixed by the reproducibility contract in the forest package and
// must not be tunable per run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PipelineConfig represents the tunable parameters of a training run.
// Fields omitted from the JSON file retain their default values, so partial
// configs are safe.
type PipelineConfig struct {
	// Sampling params
	PixelsPerCrop *int `json:"pixels_per_crop,omitempty"`

	// Summary params
	VegetationThreshold *float64 `json:"vegetation_threshold,omitempty"` // TGI mask cutoff
	SanityLimitK        *float64 `json:"sanity_limit_k,omitempty"`       // skip maps with larger raw mean error

	// Diagnostics
	ScatterSample *int  `json:"scatter_sample,omitempty"` // points on the fit scatter plot
	Verbose       *bool `json:"verbose,omitempty"`
}

// DefaultConfig returns a config with all fields unset, so every accessor
// falls back to its default.
func DefaultConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// Load reads a PipelineConfig from a JSON file.
func Load(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *PipelineConfig) Validate() error {
	if c.PixelsPerCrop != nil && *c.PixelsPerCrop < 0 {
		return fmt.Errorf("pixels_per_crop must be non-negative, got %d", *c.PixelsPerCrop)
	}
	if c.VegetationThreshold != nil && *c.VegetationThreshold < 0 {
		return fmt.Errorf("vegetation_threshold must be non-negative, got %f", *c.VegetationThreshold)
	}
	if c.SanityLimitK != nil && *c.SanityLimitK <= 0 {
		return fmt.Errorf("sanity_limit_k must be positive, got %f", *c.SanityLimitK)
	}
	if c.ScatterSample != nil && *c.ScatterSample < 1 {
		return fmt.Errorf("scatter_sample must be positive, got %d", *c.ScatterSample)
	}
	return nil
}

// GetPixelsPerCrop returns the pixels_per_crop value or the default.
func (c *PipelineConfig) GetPixelsPerCrop() int {
	if c.PixelsPerCrop == nil {
		return 1000 // default
	}
	return *c.PixelsPerCrop
}

// GetVegetationThreshold returns the vegetation_threshold value or the default.
func (c *PipelineConfig) GetVegetationThreshold() float64 {
	if c.VegetationThreshold == nil {
		return 0.04
	}
	return *c.VegetationThreshold
}

// GetSanityLimitK returns the sanity_limit_k value or the default.
func (c *PipelineConfig) GetSanityLimitK() float64 {
	if c.SanityLimitK == nil {
		return 1000
	}
	return *c.SanityLimitK
}

// GetScatterSample returns the scatter_sample value or the default.
func (c *PipelineConfig) GetScatterSample() int {
	if c.ScatterSample == nil {
		return 1000
	}
	return *c.ScatterSample
}

// GetVerbose returns the verbose value or the default.
func (c *PipelineConfig) GetVerbose() bool {
	if c.Verbose == nil {
		return false
	}
	return *c.Verbose
}
