package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "INFO", Output: "stdout"},
		Server:  ServerConfig{Listen: ":8080", ShutdownTimeout: 30 * time.Second},
		Volumes: []VolumeConfig{
			{
				Type:    "local",
				Alias:   "files",
				Default: AccessConfig{Read: true, Write: true},
				Local:   map[string]any{"path": "/srv/files"},
			},
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Expected valid config to pass, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"

	if err := Validate(cfg); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestValidate_InvalidVolumeType(t *testing.T) {
	cfg := validConfig()
	cfg.Volumes[0].Type = "ftp"

	if err := Validate(cfg); err == nil {
		t.Error("Expected error for unsupported volume type")
	}
}

func TestValidate_NoVolumes(t *testing.T) {
	cfg := validConfig()
	cfg.Volumes = nil

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error when no volumes are configured")
	}
	if !strings.Contains(err.Error(), "at least one volume") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestValidate_DuplicateAliases(t *testing.T) {
	cfg := validConfig()
	cfg.Volumes = append(cfg.Volumes, VolumeConfig{
		Type:    "local",
		Alias:   "files",
		Default: AccessConfig{Read: true},
		Local:   map[string]any{"path": "/srv/other"},
	})

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for duplicate volume aliases")
	}
	if !strings.Contains(err.Error(), "duplicate alias") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestValidate_MissingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Volumes[0].Alias = ""

	if err := Validate(cfg); err == nil {
		t.Error("Expected error for missing volume alias")
	}
}

func TestValidate_ReadOnlyWithUploadOverwrite(t *testing.T) {
	cfg := validConfig()
	cfg.Volumes[0].ReadOnly = true
	cfg.Volumes[0].UploadOverwrite = true

	if err := Validate(cfg); err == nil {
		t.Error("Expected error for upload_overwrite on a read-only volume")
	}
}

func TestValidate_NegativeMaxUploadSize(t *testing.T) {
	cfg := validConfig()
	cfg.Volumes[0].MaxUploadSize = -1

	if err := Validate(cfg); err == nil {
		t.Error("Expected error for negative max_upload_size")
	}
}

func TestValidate_MissingOverridePath(t *testing.T) {
	cfg := validConfig()
	cfg.Volumes[0].Overrides = []OverrideConfig{{}}

	if err := Validate(cfg); err == nil {
		t.Error("Expected error for override without a path")
	}
}

func TestValidate_MetricsEnabledWithoutListen(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Listen = ""

	if err := Validate(cfg); err == nil {
		t.Error("Expected error when metrics enabled without listen address")
	}
}
