package claude

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"lyricrater/internal/services"
)

const (
	providerName       = "claude"
	defaultModel       = "claude-sonnet-4-5"
	defaultMaxTokens   = 1024
	defaultHTTPTimeout = 60 * time.Second
	stopReasonRefusal  = "refusal"
)

// Client classifies prompts through the Anthropic Messages API.
type Client struct {
	messages   anthropic.MessageService
	model      string
	maxTokens  int64
	baseURL    string
	httpClient *http.Client
}

// Option customizes the Claude client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client handed to the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL points the SDK at an alternate endpoint (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithModel selects the Claude model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

// NewClient constructs a Claude client. SDK-level retries are disabled; the
// caller's retry loop owns backoff.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, providerName, "new client", "api key required", nil)
	}
	c := &Client{
		model:      defaultModel,
		maxTokens:  defaultMaxTokens,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(c.httpClient),
	}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL+"/"))
	}
	sdk := anthropic.NewClient(reqOpts...)
	c.messages = sdk.Messages
	return c, nil
}

// Name identifies the provider in logs.
func (c *Client) Name() string { return providerName }

// Model reports the model requests are sent to.
func (c *Client) Model() string { return c.model }

// Classify sends prompt as a single user message and returns the first text block.
func (c *Client) Classify(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureRequest, Message: "prompt required"}
	}
	message, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if string(message.StopReason) == stopReasonRefusal {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureSafety, Message: "model refused the request"}
	}
	for _, block := range message.Content {
		if block.Type == "text" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", &services.ProviderError{Provider: providerName, Kind: services.FailureEmptyResponse, Message: "no text content in response"}
}

// HealthCheck issues a tiny request to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.Classify(ctx, `Respond with the JSON object {"ok":true} and nothing else.`)
	if err != nil {
		return err
	}
	if !strings.Contains(content, "ok") {
		return &services.ProviderError{Provider: providerName, Kind: services.FailureEmptyResponse, Message: "unexpected health response"}
	}
	return nil
}

func classifyError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		perr := &services.ProviderError{
			Provider:   providerName,
			Kind:       services.KindForStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Message:    http.StatusText(apiErr.StatusCode),
			Err:        err,
		}
		if apiErr.Response != nil {
			perr.RetryAfter = services.ParseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		return perr
	}
	return &services.ProviderError{Provider: providerName, Kind: services.KindForTransportError(err), Message: "request failed", Err: err}
}
