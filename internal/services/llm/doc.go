// Package llm selects and constructs the language-model provider used to rate
// lyrics.
//
// # Providers
//
// gemini (aliases: google) talks to the Gemini API through google.golang.org/genai
// and requests strict JSON output. deepseek sends a single user message to the
// OpenAI-style chat completions endpoint. claude (aliases: anthropic) uses the
// Anthropic Messages API.
//
// # Entry Points
//
// ParseProvider: normalize a provider name or alias.
// FromConfig: build a ProviderConfig from the loaded configuration.
// New: construct the Client for a ProviderConfig.
// Client.Classify: send one prompt, receive the raw reply text.
// Client.HealthCheck: verify the API key and model are usable.
//
// # Failures
//
// Every adapter reports failures as *services.ProviderError so callers can
// tell transient failures (network, rate_limit, server, empty_response) from
// terminal ones (auth, safety, request). Adapters never retry on their own;
// rating.Retrier owns backoff.
package llm
