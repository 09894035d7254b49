package config

// Canonical provider names.
const (
	ProviderGemini   = "gemini"
	ProviderDeepSeek = "deepseek"
	ProviderClaude   = "claude"
)

const (
	defaultProvider              = ProviderGemini
	defaultProviderTimeout       = 60
	defaultGeminiModel           = "gemini-1.5-flash"
	defaultDeepSeekModel         = "deepseek-chat"
	defaultDeepSeekBaseURL       = "https://api.deepseek.com"
	defaultClaudeModel           = "claude-sonnet-4-5"
	defaultIncludeReason         = true
	defaultMaxRetries            = 5
	defaultBaseDelaySeconds      = 5
	defaultCallTimeoutSeconds    = 60
	defaultLyricPreviewChars     = 60
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultGenericAPIKeyVariable = "LYRICRATER_API_KEY"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Provider: Provider{
			Name:           defaultProvider,
			TimeoutSeconds: defaultProviderTimeout,
		},
		Gemini: Endpoint{
			Model: defaultGeminiModel,
		},
		DeepSeek: Endpoint{
			Model:   defaultDeepSeekModel,
			BaseURL: defaultDeepSeekBaseURL,
		},
		Claude: Endpoint{
			Model: defaultClaudeModel,
		},
		Classification: Classification{
			IncludeReason:      defaultIncludeReason,
			MaxRetries:         defaultMaxRetries,
			BaseDelaySeconds:   defaultBaseDelaySeconds,
			CallTimeoutSeconds: defaultCallTimeoutSeconds,
		},
		Output: Output{
			LyricPreviewChars: defaultLyricPreviewChars,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
