package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the configuration with struct tags plus the rules tags
// cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	if len(cfg.Volumes) == 0 {
		return fmt.Errorf("volumes: at least one volume must be configured")
	}

	aliases := make(map[string]bool)
	for i, vol := range cfg.Volumes {
		if aliases[vol.Alias] {
			return fmt.Errorf("volumes[%d]: duplicate alias %q", i, vol.Alias)
		}
		aliases[vol.Alias] = true

		if vol.ReadOnly && vol.UploadOverwrite {
			return fmt.Errorf("volumes[%d]: upload_overwrite is meaningless on a read-only volume", i)
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics: listen address required when enabled")
	}
	return nil
}

// formatValidationError turns validator's error soup into one readable
// line per first failure.
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return err
	}
	first := validationErrors[0]
	return fmt.Errorf("config field %q failed %q validation", first.Namespace(), first.Tag())
}
