package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"maestroai/internal/config"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 8 * time.Second
	maxErrorBody     = 500
)

// Transport posts JSON requests to a provider and retries transient failures:
// transport errors, HTTP 408, 429 and 5xx. It is safe for concurrent use.
type Transport struct {
	Provider   string
	Client     *http.Client
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Sleep      func(ctx context.Context, d time.Duration) error
}

// NewTransport creates a Transport from a provider config.
func NewTransport(cfg *config.ProviderConfig) *Transport {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Transport{
		Provider:   cfg.Provider,
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
		BaseDelay:  defaultBaseDelay,
		MaxDelay:   defaultMaxDelay,
		Sleep:      SleepContext,
	}
}

// PostJSON marshals body, posts it to url with the given headers and returns
// the 2xx response body. Failures are returned as *Error or *RateLimitError.
func (t *Transport) PostJSON(ctx context.Context, url string, headers map[string]string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	logger := zerolog.Ctx(ctx)
	var (
		lastErr error
		hint    time.Duration
	)
	for attempt := 0; attempt <= t.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := t.backoff(attempt - 1)
			if hint > t.maxDelay() {
				return nil, lastErr
			}
			if hint > wait {
				wait = hint
			}
			logger.Debug().
				Str("provider", t.Provider).
				Int("retry", attempt).
				Dur("wait", wait).
				Err(lastErr).
				Msg("retrying llm request")
			if err := t.sleep(ctx, wait); err != nil {
				return nil, NewError(t.Provider, 0, err)
			}
		}

		respBody, retryable, retryAfter, err := t.do(ctx, url, headers, payload)
		if err == nil {
			return respBody, nil
		}
		lastErr, hint = err, retryAfter
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// do performs a single request. It reports whether the failure is worth
// retrying and the wait the provider asked for, if any.
func (t *Transport) do(ctx context.Context, url string, headers map[string]string, payload []byte) ([]byte, bool, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, false, 0, NewError(t.Provider, 0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, true, 0, NewError(t.Provider, 0, fmt.Errorf("calling %s API: %w", t.Provider, err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, 0, NewError(t.Provider, resp.StatusCode, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, false, 0, nil
	}

	baseErr := fmt.Errorf("%s API error (status %d): %s", t.Provider, resp.StatusCode, Truncate(string(respBody), maxErrorBody))
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return nil, true, time.Duration(retryAfter) * time.Second, NewRateLimitError(t.Provider, baseErr, retryAfter)
	}
	return nil, retryableStatus(resp.StatusCode), 0, NewError(t.Provider, resp.StatusCode, baseErr)
}

func (t *Transport) backoff(retry int) time.Duration {
	base := t.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	d := base << retry
	if d <= 0 || d > t.maxDelay() {
		return t.maxDelay()
	}
	return d
}

func (t *Transport) maxDelay() time.Duration {
	if t.MaxDelay <= 0 {
		return defaultMaxDelay
	}
	return t.MaxDelay
}

func (t *Transport) sleep(ctx context.Context, d time.Duration) error {
	if t.Sleep != nil {
		return t.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code >= 500
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
