package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Provider selects the language-model backend used for a run.
type Provider struct {
	Name           string `toml:"name"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Endpoint holds the connection settings for one provider.
type Endpoint struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Classification controls prompting and the retry loop.
type Classification struct {
	IncludeReason      bool `toml:"include_reason"`
	MaxRetries         int  `toml:"max_retries"`
	BaseDelaySeconds   int  `toml:"base_delay_seconds"`
	CallTimeoutSeconds int  `toml:"call_timeout_seconds"`
}

// Output contains export destinations and table rendering settings.
type Output struct {
	CSVPath           string `toml:"csv_path"`
	XLSXPath          string `toml:"xlsx_path"`
	LyricPreviewChars int    `toml:"lyric_preview_chars"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for lyricrater.
//
// Configuration sections:
//   - Provider: which backend to use and the HTTP timeout
//   - Gemini, DeepSeek, Claude: per-provider credentials and models
//   - Classification: reasoning toggle and retry policy
//   - Output: export paths and table preview width
//   - Logging: log format, level, and optional log file
type Config struct {
	Provider       Provider       `toml:"provider"`
	Gemini         Endpoint       `toml:"gemini"`
	DeepSeek       Endpoint       `toml:"deepseek"`
	Claude         Endpoint       `toml:"claude"`
	Classification Classification `toml:"classification"`
	Output         Output         `toml:"output"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lyricrater/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lyricrater.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Endpoint returns the settings for the named provider. Unknown names yield
// an empty Endpoint; callers validate provider names separately.
func (c *Config) Endpoint(provider string) Endpoint {
	var ep Endpoint
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGemini:
		ep = c.Gemini
	case ProviderDeepSeek:
		ep = c.DeepSeek
	case ProviderClaude:
		ep = c.Claude
	}
	return Endpoint{
		APIKey:  strings.TrimSpace(ep.APIKey),
		Model:   strings.TrimSpace(ep.Model),
		BaseURL: strings.TrimSpace(ep.BaseURL),
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Redacted returns a copy of the config with API keys masked, suitable for display.
func (c *Config) Redacted() Config {
	clone := *c
	clone.Gemini.APIKey = redact(clone.Gemini.APIKey)
	clone.DeepSeek.APIKey = redact(clone.DeepSeek.APIKey)
	clone.Claude.APIKey = redact(clone.Claude.APIKey)
	return clone
}

func redact(secret string) string {
	if strings.TrimSpace(secret) == "" {
		return ""
	}
	return "********"
}

// Marshal renders the config as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
