package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// FailureKind classifies why a provider call failed.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureNetwork
	FailureRateLimit
	FailureServer
	FailureEmptyResponse
	FailureAuth
	FailureSafety
	FailureRequest
)

// String returns the snake_case label used in logs.
func (k FailureKind) String() string {
	switch k {
	case FailureNetwork:
		return "network"
	case FailureRateLimit:
		return "rate_limit"
	case FailureServer:
		return "server"
	case FailureEmptyResponse:
		return "empty_response"
	case FailureAuth:
		return "auth"
	case FailureSafety:
		return "safety"
	case FailureRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Transient reports whether a failure of this kind may succeed when retried.
func (k FailureKind) Transient() bool {
	switch k {
	case FailureAuth, FailureSafety, FailureRequest:
		return false
	default:
		return true
	}
}

// ProviderError is returned by provider adapters for every failed call.
type ProviderError struct {
	Provider   string
	Kind       FailureKind
	StatusCode int
	RetryAfter time.Duration
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.Provider == "" {
		b.WriteString("provider")
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (http %d)", e.StatusCode)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the marker sentinel and the underlying cause.
func (e *ProviderError) Unwrap() []error {
	marker := ErrTerminal
	if e.Kind.Transient() {
		marker = ErrTransient
	}
	if e.Err == nil {
		return []error{marker}
	}
	return []error{marker, e.Err}
}

// KindForStatus maps an HTTP status code to a failure kind. Providers with
// richer signals (error codes, block reasons) refine the result themselves.
func KindForStatus(status int) FailureKind {
	switch {
	case status == http.StatusTooManyRequests:
		return FailureRateLimit
	case status == http.StatusRequestTimeout:
		return FailureNetwork
	case status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusPaymentRequired:
		return FailureAuth
	case status >= http.StatusInternalServerError:
		return FailureServer
	case status >= http.StatusBadRequest:
		return FailureRequest
	default:
		return FailureUnknown
	}
}

// KindForTransportError classifies an error raised before any HTTP response
// was received. Cancellation of the caller's context is reported as unknown
// so the retry loop can inspect the context itself.
func KindForTransportError(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	if errors.Is(err, context.Canceled) {
		return FailureUnknown
	}
	return FailureNetwork
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func ParseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay
		}
	}
	return 0
}
