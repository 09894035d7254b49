package config

import (
	"fmt"

	"lyricrater/internal/services"
)

// Validate ensures the configuration is usable. API keys are not checked here
// because commands such as `prompt` never contact a provider.
func (c *Config) Validate() error {
	if c.Provider.TimeoutSeconds <= 0 {
		return invalid("provider.timeout_seconds must be positive")
	}
	if err := c.validateClassification(); err != nil {
		return err
	}
	if c.Output.LyricPreviewChars < 0 {
		return invalid("output.lyric_preview_chars must not be negative")
	}
	return c.validateLogging()
}

func (c *Config) validateClassification() error {
	if c.Classification.MaxRetries <= 0 {
		return invalid("classification.max_retries must be positive")
	}
	if c.Classification.BaseDelaySeconds < 0 {
		return invalid("classification.base_delay_seconds must not be negative")
	}
	if c.Classification.CallTimeoutSeconds < 0 {
		return invalid("classification.call_timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid(fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid(fmt.Sprintf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}
	return nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", message, nil)
}
