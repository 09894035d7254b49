package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lyricrater/internal/services"
)

func completionHandler(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}
}

func TestClassifySendsSingleUserMessage(t *testing.T) {
	var captured chatCompletionRequest
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		completionHandler(t, "```json\n{\"rating\":\"SU\"}\n```")(w, r)
	}))
	defer server.Close()

	client := NewClient("secret", WithBaseURL(server.URL+"/"), WithModel("deepseek-chat"))
	content, err := client.Classify(context.Background(), "rate this")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if content != "```json\n{\"rating\":\"SU\"}\n```" {
		t.Fatalf("expected fenced content verbatim, got %q", content)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" || captured.Messages[0].Content != "rate this" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	if captured.Model != "deepseek-chat" {
		t.Fatalf("unexpected model %q", captured.Model)
	}
}

func TestClassifyRequestOmitsResponseFormat(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode request: %v", err)
		}
		completionHandler(t, `{"rating":"13+"}`)(w, r)
	}))
	defer server.Close()

	if _, err := NewClient("k", WithBaseURL(server.URL)).Classify(context.Background(), "p"); err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if _, ok := raw["response_format"]; ok {
		t.Fatal("response_format must not be sent")
	}
}

func TestClassifyStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		retryAfter string
		wantKind   services.FailureKind
		wantDelay  time.Duration
		transient  bool
	}{
		{"rate limit", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`, "7", services.FailureRateLimit, 7 * time.Second, true},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Authentication Fails"}}`, "", services.FailureAuth, 0, false},
		{"payment", http.StatusPaymentRequired, `{"error":{"message":"Insufficient Balance"}}`, "", services.FailureAuth, 0, false},
		{"server", http.StatusInternalServerError, `oops`, "", services.FailureServer, 0, true},
		{"busy", http.StatusServiceUnavailable, `{"error":{"message":"Server overloaded"}}`, "", services.FailureServer, 0, true},
		{"content risk", http.StatusBadRequest, `{"error":{"message":"Content Exists Risk"}}`, "", services.FailureSafety, 0, false},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"invalid model"}}`, "", services.FailureRequest, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.retryAfter != "" {
					w.Header().Set("Retry-After", tc.retryAfter)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := NewClient("k", WithBaseURL(server.URL)).Classify(context.Background(), "p")
			var perr *services.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if perr.Kind != tc.wantKind {
				t.Fatalf("kind = %s, want %s", perr.Kind, tc.wantKind)
			}
			if perr.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", perr.StatusCode, tc.status)
			}
			if perr.RetryAfter != tc.wantDelay {
				t.Fatalf("retry after = %s, want %s", perr.RetryAfter, tc.wantDelay)
			}
			if services.IsRetryable(err) != tc.transient {
				t.Fatalf("IsRetryable = %v, want %v", !tc.transient, tc.transient)
			}
		})
	}
}

func TestClassifyEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := NewClient("k", WithBaseURL(server.URL)).Classify(context.Background(), "p")
	var perr *services.ProviderError
	if !errors.As(err, &perr) || perr.Kind != services.FailureEmptyResponse {
		t.Fatalf("expected empty_response, got %v", err)
	}
}

func TestClassifyTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	_, err := NewClient("k", WithBaseURL(base)).Classify(context.Background(), "p")
	var perr *services.ProviderError
	if !errors.As(err, &perr) || perr.Kind != services.FailureNetwork {
		t.Fatalf("expected network failure, got %v", err)
	}
	if strings.Contains(err.Error(), base) {
		t.Fatalf("error should not repeat the endpoint: %v", err)
	}
}

func TestClassifyWithoutKeyIsTerminal(t *testing.T) {
	_, err := NewClient("  ").Classify(context.Background(), "p")
	if !errors.Is(err, services.ErrTerminal) {
		t.Fatalf("expected terminal error, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(completionHandler(t, `{"ok":true}`))
	defer server.Close()

	if err := NewClient("k", WithBaseURL(server.URL)).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}
