// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fibersim/internal/focalplane"
)

// SurveyConfig is the root configuration of a survey assignment run.
type SurveyConfig struct {
	TileDir          string                      `yaml:"tile_dir"`
	TilePattern      string                      `yaml:"tile_pattern"`
	FiberCatalog     string                      `yaml:"fiber_catalog"`
	ResultsDir       string                      `yaml:"results_dir"`
	AssignmentPolicy string                      `yaml:"assignment_policy"`
	Workers          int                         `yaml:"workers"`
	Positioner       focalplane.PositionerConfig `yaml:"positioner"`
}

// Load loads a YAML survey config, validates it against a CUE schema, and
// fills defaults for optional fields.
func Load(configPath, cueSchemaPath string) (*SurveyConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SurveyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.TileDir == "" {
		return nil, fmt.Errorf("config %s: tile_dir is required", configPath)
	}
	if cfg.FiberCatalog == "" {
		return nil, fmt.Errorf("config %s: fiber_catalog is required", configPath)
	}

	return &cfg, nil
}

func (c *SurveyConfig) applyDefaults() {
	if c.TilePattern == "" {
		c.TilePattern = "tile_*.json"
	}
	if c.AssignmentPolicy == "" {
		c.AssignmentPolicy = "snapshot"
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Positioner == (focalplane.PositionerConfig{}) {
		c.Positioner = focalplane.DefaultPositioner()
	}
}
