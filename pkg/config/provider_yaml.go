package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements Provider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Engine struct {
			DataDir      string  `yaml:"data_dir"`
			ModelDir     string  `yaml:"model_dir"`
			Debug        bool    `yaml:"debug"`
			WindowDays   int     `yaml:"window_days"`
			TestFraction float64 `yaml:"test_fraction"`
			ValFraction  float64 `yaml:"val_fraction"`
		} `yaml:"engine"`
		Locations []struct {
			ID          string  `yaml:"id"`
			DisplayName string  `yaml:"display_name"`
			Latitude    float64 `yaml:"latitude"`
			Longitude   float64 `yaml:"longitude"`
		} `yaml:"locations"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", y.filename, err)
	}

	config := &ConfigData{
		Engine: EngineData{
			DataDir:      yamlConfig.Engine.DataDir,
			ModelDir:     yamlConfig.Engine.ModelDir,
			Debug:        yamlConfig.Engine.Debug,
			WindowDays:   yamlConfig.Engine.WindowDays,
			TestFraction: yamlConfig.Engine.TestFraction,
			ValFraction:  yamlConfig.Engine.ValFraction,
		},
		Locations: make([]LocationData, len(yamlConfig.Locations)),
	}

	for i, loc := range yamlConfig.Locations {
		config.Locations[i] = LocationData{
			ID:          loc.ID,
			DisplayName: loc.DisplayName,
			Latitude:    loc.Latitude,
			Longitude:   loc.Longitude,
		}
	}

	y.config = config
	return config, nil
}

// GetLocations returns the configured locations
func (y *YAMLProvider) GetLocations() ([]LocationData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Locations, nil
}

// GetEngineConfig returns the engine section
func (y *YAMLProvider) GetEngineConfig() (*EngineData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Engine, nil
}

// IsReadOnly returns true; YAML configs are never written by the engine
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for file-backed configuration
func (y *YAMLProvider) Close() error {
	return nil
}
