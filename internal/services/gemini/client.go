package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"lyricrater/internal/services"
)

const (
	providerName       = "gemini"
	defaultModel       = "gemini-1.5-flash"
	jsonMIMEType       = "application/json"
	defaultHTTPTimeout = 60 * time.Second
)

// Client classifies prompts through the Gemini generateContent API.
type Client struct {
	models     *genai.Models
	model      string
	httpClient *http.Client
	baseURL    string
}

// Option customizes the Gemini client.
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

// WithModel selects the Gemini model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

// NewClient constructs a Gemini client. The SDK client is created eagerly so
// configuration problems surface before the first row.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, providerName, "new client", "api key required", nil)
	}
	c := &Client{
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL + "/"}
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, providerName, "new client", "create genai client", err)
	}
	c.models = sdk.Models
	return c, nil
}

// Name identifies the provider in logs.
func (c *Client) Name() string { return providerName }

// Model reports the model requests are sent to.
func (c *Client) Model() string { return c.model }

// Classify asks Gemini for a strict JSON reply and returns its text.
func (c *Client) Classify(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureRequest, Message: "prompt required"}
	}
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: jsonMIMEType,
	})
	if err != nil {
		return "", classifyError(err)
	}
	if resp == nil {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureEmptyResponse, Message: "nil response"}
	}
	if blocked := blockReason(resp); blocked != "" {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureSafety, Message: blocked}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureEmptyResponse, Message: "no text in candidates"}
	}
	return text, nil
}

// HealthCheck issues a tiny request to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.Classify(ctx, `Respond with the JSON object {"ok":true}.`)
	if err != nil {
		return err
	}
	if !strings.Contains(content, "ok") {
		return &services.ProviderError{Provider: providerName, Kind: services.FailureEmptyResponse, Message: "unexpected health response"}
	}
	return nil
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		msg := "prompt blocked: " + string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			msg += " (" + fb.BlockReasonMessage + ")"
		}
		return msg
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		switch cand.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
			return "response blocked: " + string(cand.FinishReason)
		}
	}
	return ""
}

func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fromAPIError(*apiErrPtr)
	}
	return &services.ProviderError{Provider: providerName, Kind: services.KindForTransportError(err), Message: "request failed", Err: err}
}

func fromAPIError(apiErr genai.APIError) *services.ProviderError {
	kind := services.KindForStatus(apiErr.Code)
	switch strings.ToUpper(apiErr.Status) {
	case "RESOURCE_EXHAUSTED":
		kind = services.FailureRateLimit
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		kind = services.FailureAuth
	case "DEADLINE_EXCEEDED", "UNAVAILABLE":
		kind = services.FailureServer
	}
	if apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key not valid") {
		kind = services.FailureAuth
	}
	message := strings.TrimSpace(apiErr.Message)
	if apiErr.Status != "" {
		message = fmt.Sprintf("%s: %s", apiErr.Status, message)
	}
	return &services.ProviderError{
		Provider:   providerName,
		Kind:       kind,
		StatusCode: apiErr.Code,
		Message:    message,
	}
}
