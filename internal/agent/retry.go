package agent

import (
	"context"
	"errors"
	"math"
	"time"

	"maestroai/internal/config"
	"maestroai/internal/domain"
	"maestroai/internal/llm"
)

// RetryPolicy decides how often and how long to wait between invocation attempts.
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor float64
	MaxDelay      time.Duration
	// Retryable reports whether a failed attempt may be repeated.
	Retryable func(error) bool
	// Sleep waits between attempts; replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy makes 3 attempts waiting 1s then 2s, retrying LLM errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffFactor: 2,
		MaxDelay:      10 * time.Second,
		Retryable:     IsRetryable,
		Sleep:         llm.SleepContext,
	}
}

// RetryPolicyFromConfig builds a policy from configuration, keeping defaults
// for unset values.
func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	p := DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialDelay > 0 {
		p.InitialDelay = cfg.InitialDelay
	}
	if cfg.BackoffFactor >= 1 {
		p.BackoffFactor = cfg.BackoffFactor
	}
	if cfg.MaxDelay > 0 {
		p.MaxDelay = cfg.MaxDelay
	}
	return p
}

// IsRetryable matches errors from the LLM invocation.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrLLM)
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Retry runs fn until it succeeds, fails with a non-retryable error or the
// attempts are used up. It returns the number of attempts made and the last
// error unmodified. Context cancellation stops retrying immediately.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = llm.SleepContext
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := fn(ctx, attempt)
		if err == nil {
			return v, attempt, nil
		}
		lastErr = err
		if attempt == maxAttempts || !retryable(err) || ctx.Err() != nil {
			return zero, attempt, err
		}
		if sleep(ctx, p.Backoff(attempt)) != nil {
			return zero, attempt, lastErr
		}
	}
	return zero, maxAttempts, lastErr
}
