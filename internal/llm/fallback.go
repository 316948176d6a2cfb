package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"maestroai/internal/port"
)

// circuitState tracks rate-limit backoff for a single client.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackClient tries clients in order, skipping those whose circuit is open
// after a rate limit. It implements port.ChatClient.
type FallbackClient struct {
	clients  []port.ChatClient
	circuits []*circuitState
	now      func() time.Time
}

// NewFallbackClient creates a FallbackClient from an ordered list of clients.
// The first client is the primary and names the provider and model.
func NewFallbackClient(clients ...port.ChatClient) *FallbackClient {
	circuits := make([]*circuitState, len(clients))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackClient{
		clients:  clients,
		circuits: circuits,
		now:      time.Now,
	}
}

func (f *FallbackClient) Provider() string { return f.clients[0].Provider() }

func (f *FallbackClient) Model() string { return f.clients[0].Model() }

// SupportsStructuredOutput holds only when every client in the chain supports
// it, since any of them may end up answering.
func (f *FallbackClient) SupportsStructuredOutput() bool {
	for _, c := range f.clients {
		if !c.SupportsStructuredOutput() {
			return false
		}
	}
	return true
}

func (f *FallbackClient) Complete(ctx context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	logger := zerolog.Ctx(ctx)
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, c := range f.clients {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			logger.Warn().
				Str("provider", c.Provider()).
				Time("reset_at", resetAt).
				Msg("skipping llm provider, circuit open")
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		resp, err := c.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}

		logger.Warn().Err(err).Str("provider", c.Provider()).Msg("llm provider failed")
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}

		if ctx.Err() != nil {
			return nil, Wrap(c.Provider(), err)
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all llm providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, Wrap(f.Provider(), fmt.Errorf("all llm providers failed: %w", lastErr))
}
