package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills unspecified fields with working values. Explicit
// values are preserved; only zero values are replaced.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyMetricsDefaults(&cfg.Metrics)
	applyVolumeDefaults(cfg.Volumes)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Listen == "" {
		cfg.Listen = ":9090"
	}
}

func applyVolumeDefaults(volumes []VolumeConfig) {
	for i := range volumes {
		v := &volumes[i]
		// Readable and writable unless the config says otherwise; a
		// fully zero-valued default would mount an invisible volume.
		if !v.Default.Read && !v.Default.Write && !v.Default.Locked {
			v.Default.Read = true
			v.Default.Write = true
		}
	}
}
