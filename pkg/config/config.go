// Package config provides configuration loading and management for sliceviewer.
// It handles loading configuration from YAML or TOML files and provides default values.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Zoom slider parameters
	Zoom struct {
		// Min is the lowest zoom slider value (coarsest sampling grid)
		Min int `yaml:"min" toml:"min"`

		// Max is the highest zoom slider value (finest sampling grid)
		Max int `yaml:"max" toml:"max"`

		// Scale1 is the slider value displaying the slice at 1:1
		Scale1 int `yaml:"scale1" toml:"scale1"`
	} `yaml:"zoom" toml:"zoom"`

	// Dicom holds the Hounsfield window mapped onto 0..255 for medical images
	Dicom struct {
		Min int `yaml:"min" toml:"min"`
		Max int `yaml:"max" toml:"max"`
	} `yaml:"dicom" toml:"dicom"`

	// Export parameters
	Export struct {
		// Format is the image encoding used for exported slices (png, jpg, tiff, bmp)
		Format string `yaml:"format" toml:"format"`

		// Dir is the directory exported slices are written to
		Dir string `yaml:"dir" toml:"dir"`
	} `yaml:"export" toml:"export"`

	// Server parameters
	Server struct {
		// Addr is the listen address of the slice server
		Addr string `yaml:"addr" toml:"addr"`
	} `yaml:"server" toml:"server"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose" toml:"verbose"`
	} `yaml:"output" toml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Zoom.Min = 10
	cfg.Zoom.Max = 40
	cfg.Zoom.Scale1 = 20

	cfg.Dicom.Min = -1000
	cfg.Dicom.Max = 3000

	cfg.Export.Format = "png"
	cfg.Export.Dir = "slices"

	cfg.Server.Addr = ":8080"

	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that the zoom and window settings are usable
func (c *Config) Validate() error {
	if c.Zoom.Min <= 0 {
		return fmt.Errorf("zoom.min must be positive, got %d", c.Zoom.Min)
	}
	if c.Zoom.Scale1 < c.Zoom.Min || c.Zoom.Scale1 > c.Zoom.Max {
		return fmt.Errorf("zoom.scale1 %d outside [%d, %d]", c.Zoom.Scale1, c.Zoom.Min, c.Zoom.Max)
	}
	if c.Dicom.Min >= c.Dicom.Max {
		return fmt.Errorf("dicom.min %d must be below dicom.max %d", c.Dicom.Min, c.Dicom.Max)
	}
	return nil
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by extension.
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if isTOML(configPath) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML or TOML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	var data []byte
	if isTOML(configPath) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
