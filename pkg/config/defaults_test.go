package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_LevelUppercased(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level to be uppercased to 'DEBUG', got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Listen != ":8080" {
		t.Errorf("Expected default listen ':8080', got %q", cfg.Server.Listen)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Metrics.Listen != "" {
		t.Errorf("Expected no metrics listen address when disabled, got %q", cfg.Metrics.Listen)
	}

	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)
	if cfg.Metrics.Listen != ":9090" {
		t.Errorf("Expected default metrics listen ':9090', got %q", cfg.Metrics.Listen)
	}
}

func TestApplyDefaults_VolumeAccess(t *testing.T) {
	cfg := &Config{
		Volumes: []VolumeConfig{
			{Type: "local", Alias: "zeroed"},
			{Type: "local", Alias: "explicit", Default: AccessConfig{Locked: true}},
		},
	}
	ApplyDefaults(cfg)

	// A fully zero access block becomes read+write.
	if !cfg.Volumes[0].Default.Read || !cfg.Volumes[0].Default.Write {
		t.Errorf("Expected zeroed volume to default to read+write, got %+v", cfg.Volumes[0].Default)
	}

	// Any explicit flag disables the fill-in.
	if cfg.Volumes[1].Default.Read || cfg.Volumes[1].Default.Write {
		t.Errorf("Expected explicit volume access to be preserved, got %+v", cfg.Volumes[1].Default)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "WARN", Output: "stderr"},
		Server:  ServerConfig{Listen: ":9000", ShutdownTimeout: 5 * time.Second},
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected explicit level 'WARN' preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected explicit output 'stderr' preserved, got %q", cfg.Logging.Output)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("Expected explicit listen ':9000' preserved, got %q", cfg.Server.Listen)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected explicit shutdown timeout 5s preserved, got %v", cfg.Server.ShutdownTimeout)
	}
}
