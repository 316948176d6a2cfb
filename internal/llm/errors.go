package llm

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"maestroai/internal/domain"
)

// Error is a failed LLM invocation: a transport failure, a non-2xx reply or a
// reply that cannot be used. It matches domain.ErrLLM.
type Error struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s llm error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s llm error: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == domain.ErrLLM
}

// NewError creates an Error for the given provider.
func NewError(provider string, statusCode int, err error) *Error {
	return &Error{Provider: provider, StatusCode: statusCode, Err: err}
}

// Errorf creates an Error without a status code from a format string.
func Errorf(provider, format string, args ...any) *Error {
	return &Error{Provider: provider, Err: fmt.Errorf(format, args...)}
}

// Wrap returns err unchanged when it already matches domain.ErrLLM and wraps
// it in an Error otherwise. A nil err stays nil.
func Wrap(provider string, err error) error {
	if err == nil || errors.Is(err, domain.ErrLLM) {
		return err
	}
	return &Error{Provider: provider, Err: err}
}

// RateLimitError indicates an LLM provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrLLM
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// Truncate shortens s to maxLen bytes for inclusion in error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
