package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete connector configuration.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (ELFIN_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
//
// Volume Configuration Pattern:
// Each backend type defines its own option keys. A VolumeConfig carries
// type-specific sections (local, s3) and only the section matching Type
// is consulted; the factory in factories.go does the decoding.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains the HTTP server settings.
	Server ServerConfig `mapstructure:"server"`

	// Metrics controls Prometheus metrics exposure.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Volumes defines the storage roots exposed to the client.
	Volumes []VolumeConfig `mapstructure:"volumes" validate:"dive"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN or ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output is where logs go: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	// Listen is the bind address, e.g. ":8080".
	Listen string `mapstructure:"listen" validate:"required"`

	// ShutdownTimeout caps how long graceful shutdown waits.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool `mapstructure:"enabled"`

	// Listen is the metrics bind address when enabled.
	Listen string `mapstructure:"listen"`
}

// VolumeConfig describes one storage root to mount.
type VolumeConfig struct {
	// Type selects the backend: local or s3.
	Type string `mapstructure:"type" validate:"required,oneof=local s3"`

	// Alias is the display name of the volume root.
	Alias string `mapstructure:"alias" validate:"required"`

	// URL optionally lets clients fetch content directly.
	URL string `mapstructure:"url"`

	// TmbURL enables thumbnails when set.
	TmbURL string `mapstructure:"tmb_url"`

	ReadOnly bool `mapstructure:"read_only"`
	Locked   bool `mapstructure:"locked"`
	ShowOnly bool `mapstructure:"show_only"`

	// MaxUploadSize caps uploaded files in bytes; 0 means unlimited.
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"gte=0"`

	// UploadOverwrite lets uploads replace same-named files.
	UploadOverwrite bool `mapstructure:"upload_overwrite"`

	// StartPath is the subdirectory shown on the client's first open.
	StartPath string `mapstructure:"start_path"`

	// TmbSize is the thumbnail edge length in pixels.
	TmbSize int `mapstructure:"tmb_size" validate:"gte=0"`

	// Default is the access policy applied when no override matches.
	Default AccessConfig `mapstructure:"default"`

	// Overrides are per-path access exceptions.
	Overrides []OverrideConfig `mapstructure:"overrides" validate:"dive"`

	// Local holds local-backend options; used when Type = "local".
	Local map[string]any `mapstructure:"local"`

	// S3 holds S3-backend options; used when Type = "s3".
	S3 map[string]any `mapstructure:"s3"`
}

// AccessConfig is a read/write/locked flag set.
type AccessConfig struct {
	Read   bool `mapstructure:"read"`
	Write  bool `mapstructure:"write"`
	Locked bool `mapstructure:"locked"`
}

// OverrideConfig is one per-path access exception. Nil flags inherit.
type OverrideConfig struct {
	Path   string `mapstructure:"path" validate:"required"`
	Read   *bool  `mapstructure:"read"`
	Write  *bool  `mapstructure:"write"`
	Locked *bool  `mapstructure:"locked"`
}

// Load reads configuration from the given file (or the default search
// locations when path is empty), layers ELFIN_* environment variables on
// top, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("elfin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/elfin")
	}

	v.SetEnvPrefix("ELFIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file is fine when nothing was asked for explicitly;
		// defaults plus env vars still make a runnable config.
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
