package rating

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lyricrater/internal/logging"
	"lyricrater/internal/services"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseDelay   = 5 * time.Second
	DefaultCallTimeout = 60 * time.Second

	maxBackoffDelay = time.Hour
)

// Retrier wraps a Classifier and the normalizer in a bounded exponential
// backoff. It is the only component that sleeps.
type Retrier struct {
	classifier  Classifier
	maxRetries  int
	baseDelay   time.Duration
	callTimeout time.Duration
	sleeper     func(time.Duration)
	logger      *slog.Logger
}

// RetryOption customizes the retrier.
type RetryOption func(*Retrier)

// WithMaxRetries overrides the number of attempts (defaults to 5).
func WithMaxRetries(attempts int) RetryOption {
	return func(r *Retrier) {
		r.maxRetries = attempts
	}
}

// WithBaseDelay overrides the first backoff delay (defaults to 5s).
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(r *Retrier) {
		r.baseDelay = delay
	}
}

// WithCallTimeout bounds each provider call. Zero disables the per-call deadline.
func WithCallTimeout(timeout time.Duration) RetryOption {
	return func(r *Retrier) {
		r.callTimeout = timeout
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) RetryOption {
	return func(r *Retrier) {
		r.sleeper = sleeper
	}
}

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) RetryOption {
	return func(r *Retrier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetrier constructs a retrier around classifier.
func NewRetrier(classifier Classifier, opts ...RetryOption) *Retrier {
	r := &Retrier{
		classifier:  classifier,
		maxRetries:  DefaultMaxRetries,
		baseDelay:   DefaultBaseDelay,
		callTimeout: DefaultCallTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify renders the prompt for req and returns a normalized result.
//
// Attempt n (0-based) that fails transiently is followed by a sleep of
// baseDelay*2^n, including after the last attempt so the provider cools down
// before the next row. Terminal failures return immediately. The result is
// never empty and Classify never returns an error.
func (r *Retrier) Classify(ctx context.Context, req Request) Result {
	if r == nil || r.classifier == nil {
		return errorResult(providerFailurePrefix + "classifier not configured")
	}
	prompt := BuildPrompt(req.Title, req.Lyric, req.IncludeReason)
	logger := logging.WithContext(ctx, r.logger)
	attempts := r.attempts()

	for attempt := 0; attempt < attempts; attempt++ {
		raw, err := r.call(ctx, prompt)
		if err == nil {
			result := Normalize(raw, req.IncludeReason)
			if result.IsError {
				logger.Warn("provider returned unparseable payload",
					logging.Int("attempt", attempt+1),
					logging.String("payload_snippet", logging.Snippet(raw)),
				)
			}
			return result
		}
		if ctx.Err() != nil {
			return errorResult(providerFailurePrefix + ctx.Err().Error())
		}

		kind := failureKind(err)
		if !services.IsRetryable(err) {
			logger.Warn("provider call failed permanently",
				logging.Int("attempt", attempt+1),
				logging.String("kind", kind.String()),
				logging.Error(err),
			)
			return errorResult(providerFailurePrefix + err.Error())
		}

		delay := r.backoffDelay(attempt, err)
		logger.Warn("provider call failed; backing off",
			logging.Int("attempt", attempt+1),
			logging.Int("max_attempts", attempts),
			logging.String("kind", kind.String()),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := r.sleep(ctx, delay); err != nil {
			return errorResult(providerFailurePrefix + err.Error())
		}
	}

	logger.Warn("provider retries exhausted", logging.Int("attempts", attempts))
	return errorResult(ReasonRetryExhausted)
}

func (r *Retrier) call(ctx context.Context, prompt string) (string, error) {
	if r.callTimeout <= 0 {
		return r.classifier.Classify(ctx, prompt)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return r.classifier.Classify(callCtx, prompt)
}

func (r *Retrier) attempts() int {
	if r.maxRetries <= 0 {
		return 1
	}
	return r.maxRetries
}

// backoffDelay returns baseDelay*2^attempt, honouring a longer Retry-After
// hint when the provider sent one.
func (r *Retrier) backoffDelay(attempt int, err error) time.Duration {
	delay := r.baseDelay
	if delay < 0 {
		delay = 0
	}
	for i := 0; i < attempt && delay > 0; i++ {
		if delay > maxBackoffDelay/2 {
			delay = maxBackoffDelay
			break
		}
		delay *= 2
	}
	var providerErr *services.ProviderError
	if errors.As(err, &providerErr) && providerErr.RetryAfter > delay {
		delay = min(providerErr.RetryAfter, maxBackoffDelay)
	}
	return delay
}

func (r *Retrier) sleep(ctx context.Context, delay time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if delay <= 0 {
		return nil
	}
	if r.sleeper != nil {
		r.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func failureKind(err error) services.FailureKind {
	var providerErr *services.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Kind
	}
	return services.FailureUnknown
}
