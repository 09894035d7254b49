package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeProvider()
	c.Gemini.APIKey = envFallback(c.Gemini.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY", defaultGenericAPIKeyVariable)
	c.DeepSeek.APIKey = envFallback(c.DeepSeek.APIKey, "DEEPSEEK_API_KEY", defaultGenericAPIKeyVariable)
	c.Claude.APIKey = envFallback(c.Claude.APIKey, "ANTHROPIC_API_KEY", defaultGenericAPIKeyVariable)
	normalizeEndpoint(&c.Gemini, defaultGeminiModel)
	normalizeEndpoint(&c.DeepSeek, defaultDeepSeekModel)
	normalizeEndpoint(&c.Claude, defaultClaudeModel)
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeProvider() {
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	if c.Provider.Name == "" {
		c.Provider.Name = defaultProvider
	}
	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = defaultProviderTimeout
	}
}

func normalizeEndpoint(ep *Endpoint, defaultModel string) {
	ep.APIKey = strings.TrimSpace(ep.APIKey)
	ep.Model = strings.TrimSpace(ep.Model)
	if ep.Model == "" {
		ep.Model = defaultModel
	}
	ep.BaseURL = strings.TrimRight(strings.TrimSpace(ep.BaseURL), "/")
}

func envFallback(value string, variables ...string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	for _, name := range variables {
		if env, ok := os.LookupEnv(name); ok && strings.TrimSpace(env) != "" {
			return strings.TrimSpace(env)
		}
	}
	return ""
}

func (c *Config) normalizeOutput() error {
	var err error
	if c.Output.CSVPath, err = expandPath(strings.TrimSpace(c.Output.CSVPath)); err != nil {
		return fmt.Errorf("output.csv_path: %w", err)
	}
	if c.Output.XLSXPath, err = expandPath(strings.TrimSpace(c.Output.XLSXPath)); err != nil {
		return fmt.Errorf("output.xlsx_path: %w", err)
	}
	if c.Output.LyricPreviewChars == 0 {
		c.Output.LyricPreviewChars = defaultLyricPreviewChars
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
