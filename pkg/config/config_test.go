package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies the defaults match the slider and window settings
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Zoom.Min != 10 || cfg.Zoom.Max != 40 || cfg.Zoom.Scale1 != 20 {
		t.Errorf("Unexpected zoom defaults: %+v", cfg.Zoom)
	}

	if cfg.Dicom.Min != -1000 || cfg.Dicom.Max != 3000 {
		t.Errorf("Unexpected dicom defaults: %+v", cfg.Dicom)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

// TestLoadMissingConfig verifies that a missing file yields the defaults
func TestLoadMissingConfig(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Failed to load missing config: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default server address, got %q", cfg.Server.Addr)
	}
}

// TestSaveAndLoadConfig verifies round trips through both file formats
func TestSaveAndLoadConfig(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := DefaultConfig()
			cfg.Zoom.Max = 60
			cfg.Dicom.Min = -500
			cfg.Export.Format = "tiff"

			if err := SaveConfig(cfg, path); err != nil {
				t.Fatalf("Failed to save config: %v", err)
			}

			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}

			if loaded.Zoom.Max != 60 {
				t.Errorf("Expected zoom max 60, got %d", loaded.Zoom.Max)
			}
			if loaded.Dicom.Min != -500 {
				t.Errorf("Expected dicom min -500, got %d", loaded.Dicom.Min)
			}
			if loaded.Export.Format != "tiff" {
				t.Errorf("Expected export format tiff, got %q", loaded.Export.Format)
			}
		})
	}
}

// TestPartialConfigKeepsDefaults verifies unspecified keys keep their defaults
func TestPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("zoom:\n  max: 80\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Zoom.Max != 80 || cfg.Zoom.Min != 10 || cfg.Zoom.Scale1 != 20 {
		t.Errorf("Unexpected zoom settings: %+v", cfg.Zoom)
	}
}

// TestInvalidConfig verifies validation failures are reported
func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[dicom]\nmin = 10\nmax = 5\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for inverted dicom window")
	}

	cfg := DefaultConfig()
	cfg.Zoom.Scale1 = 50
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for scale1 outside zoom range")
	}
}

// TestSaveConfigReportsWriteErrors verifies a failed write is not reported as success
func TestSaveConfigReportsWriteErrors(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.Mkdir(path, 0755); err != nil {
				t.Fatal(err)
			}

			if err := SaveConfig(DefaultConfig(), path); err == nil {
				t.Error("Expected an error when the config path is a directory")
			}
		})
	}
}
