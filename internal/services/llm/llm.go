package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"lyricrater/internal/config"
	"lyricrater/internal/rating"
	"lyricrater/internal/services"
	"lyricrater/internal/services/claude"
	"lyricrater/internal/services/deepseek"
	"lyricrater/internal/services/gemini"
)

// Provider names a supported backend.
type Provider string

const (
	ProviderGemini   Provider = config.ProviderGemini
	ProviderDeepSeek Provider = config.ProviderDeepSeek
	ProviderClaude   Provider = config.ProviderClaude
)

const defaultTimeout = 60 * time.Second

var defaultModels = map[Provider]string{
	ProviderGemini:   "gemini-1.5-flash",
	ProviderDeepSeek: "deepseek-chat",
	ProviderClaude:   "claude-sonnet-4-5",
}

// Providers lists the supported backends in display order.
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderDeepSeek, ProviderClaude}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	return defaultModels[p]
}

// ParseProvider resolves a case-insensitive provider name or alias.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini", "google":
		return ProviderGemini, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	case "claude", "anthropic":
		return ProviderClaude, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "llm", "parse provider",
			fmt.Sprintf("unknown provider %q (want gemini, deepseek, or claude)", name), nil)
	}
}

// ProviderConfig carries everything needed to construct one provider client.
type ProviderConfig struct {
	Provider       Provider
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

// String renders the config without its API key.
func (c ProviderConfig) String() string {
	return fmt.Sprintf("%s model=%s", c.Provider, c.Model)
}

// FromConfig builds the ProviderConfig for the named provider, falling back to
// the configured default when name is empty.
func FromConfig(cfg *config.Config, name string) (ProviderConfig, error) {
	if strings.TrimSpace(name) == "" {
		name = cfg.Provider.Name
	}
	provider, err := ParseProvider(name)
	if err != nil {
		return ProviderConfig{}, err
	}
	ep := cfg.Endpoint(string(provider))
	return ProviderConfig{
		Provider:       provider,
		APIKey:         ep.APIKey,
		Model:          ep.Model,
		BaseURL:        ep.BaseURL,
		TimeoutSeconds: cfg.Provider.TimeoutSeconds,
	}, nil
}

// Client is a rating.Classifier that can also probe its own credentials.
type Client interface {
	rating.Classifier
	Model() string
	HealthCheck(ctx context.Context) error
}

type options struct {
	httpClient *http.Client
}

// Option customizes client construction.
type Option func(*options)

// WithHTTPClient overrides the HTTP client used by every adapter.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// New validates cfg and returns the matching provider client.
func New(cfg ProviderConfig, opts ...Option) (Client, error) {
	provider, err := ParseProvider(string(cfg.Provider))
	if err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "llm", "new client",
			fmt.Sprintf("api key required for %s", provider), nil)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel(provider)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	httpClient := o.httpClient
	if httpClient == nil {
		timeout := defaultTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	switch provider {
	case ProviderGemini:
		client, err := gemini.NewClient(context.Background(), apiKey,
			gemini.WithModel(model),
			gemini.WithBaseURL(cfg.BaseURL),
			gemini.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderDeepSeek:
		return deepseek.NewClient(apiKey,
			deepseek.WithModel(model),
			deepseek.WithBaseURL(cfg.BaseURL),
			deepseek.WithHTTPClient(httpClient),
		), nil
	default:
		client, err := claude.NewClient(apiKey,
			claude.WithModel(model),
			claude.WithBaseURL(cfg.BaseURL),
			claude.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
