package types

import "fmt"

// SourceUnavailableError reports a per-call source failure: network error,
// timeout, or non-2xx response. Non-fatal; the caller skips and continues.
type SourceUnavailableError struct {
	Source  SourceKind
	URL     string
	Message string
	Cause   error
}

func (e *SourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s unavailable (%s): %s: %v", e.Source, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("source %s unavailable (%s): %s", e.Source, e.URL, e.Message)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Cause
}

// RateLimitExceededError signals that a source has spent its call budget and
// must not receive further requests for the remainder of the run.
type RateLimitExceededError struct {
	Source  SourceKind
	Message string
	Cause   error
}

func (e *RateLimitExceededError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rate limit exceeded for %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("rate limit exceeded for %s: %s", e.Source, e.Message)
}

func (e *RateLimitExceededError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError reports an unexpected payload shape from a
// third-party source. Treated exactly like SourceUnavailableError.
type MalformedResponseError struct {
	Source  SourceKind
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response from %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed response from %s: %s", e.Source, e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// ConfigurationError reports missing credentials or invalid policy values.
// It is the only error allowed to terminate a run, and only before any
// fetch has been issued.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
