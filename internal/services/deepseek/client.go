package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lyricrater/internal/services"
)

const (
	providerName       = "deepseek"
	defaultBaseURL     = "https://api.deepseek.com"
	defaultModel       = "deepseek-chat"
	defaultHTTPTimeout = 60 * time.Second
	maxErrorBody       = 512
)

// Client wraps the DeepSeek chat completion API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the DeepSeek client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithModel selects the chat model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

// NewClient constructs a DeepSeek API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Name identifies the provider in logs.
func (c *Client) Name() string { return providerName }

// Model reports the model requests are sent to.
func (c *Client) Model() string { return c.model }

// Classify sends prompt as a single user message and returns the reply text
// verbatim. Replies are often wrapped in a code fence; unwrapping is left to
// the caller.
func (c *Client) Classify(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureRequest, Message: "prompt required"}
	}
	if c.apiKey == "" {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureAuth, Message: "api key required"}
	}
	return c.complete(ctx, chatCompletionRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
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

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (c *Client) complete(ctx context.Context, payload chatCompletionRequest) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, "chat", "completions")
	if err != nil {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureRequest, Message: "build url", Err: err}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureRequest, Message: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureRequest, Message: "new request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &services.ProviderError{Provider: providerName, Kind: services.KindForTransportError(err), Message: "request failed", Err: stripURL(err)}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureNetwork, StatusCode: resp.StatusCode, Message: "read body", Err: err}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", statusError(resp, body)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureServer, Message: "decode response", Err: err}
	}
	if completion.Error != nil {
		return "", &services.ProviderError{Provider: providerName, Kind: services.FailureServer, Message: strings.TrimSpace(completion.Error.Message)}
	}
	for _, choice := range completion.Choices {
		if strings.EqualFold(choice.FinishReason, "content_filter") {
			return "", &services.ProviderError{Provider: providerName, Kind: services.FailureSafety, Message: "response blocked by content filter"}
		}
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	return "", &services.ProviderError{Provider: providerName, Kind: services.FailureEmptyResponse, Message: "no content in choices"}
}

func statusError(resp *http.Response, body []byte) *services.ProviderError {
	perr := &services.ProviderError{
		Provider:   providerName,
		Kind:       services.KindForStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		perr.RetryAfter = services.ParseRetryAfter(resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode == http.StatusBadRequest && isContentRisk(perr.Message) {
		perr.Kind = services.FailureSafety
	}
	return perr
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return strings.TrimSpace(envelope.Error.Message)
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

func isContentRisk(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "content exists risk") || strings.Contains(lower, "content_filter")
}

// stripURL drops the request URL so transport errors stay short in row reasons.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
