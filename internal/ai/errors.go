package ai

import (
	"errors"
	"fmt"
)

// ErrNoResponse is returned when a provider hands back neither a stream nor a
// completion.
var ErrNoResponse = errors.New("provider returned no response")

// UnsupportedProviderError is returned for an unknown provider tag.
type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider %q (supported: %v)", e.Provider, SupportedProviders())
}

// CompletionSessionError means no completion could be started for a request.
type CompletionSessionError struct {
	Provider string
	Err      error
}

func (e *CompletionSessionError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *CompletionSessionError) Unwrap() error { return e.Err }

// StreamTerminationError means a stream ended with an error after it started.
type StreamTerminationError struct {
	Provider string
	Err      error
}

func (e *StreamTerminationError) Error() string {
	return fmt.Sprintf("%s stream terminated: %v", e.Provider, e.Err)
}

func (e *StreamTerminationError) Unwrap() error { return e.Err }
