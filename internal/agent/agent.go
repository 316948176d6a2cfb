package agent

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"maestroai/internal/config"
	"maestroai/internal/imaging"
	"maestroai/internal/llm"
	"maestroai/internal/metrics"
	"maestroai/internal/port"
	"maestroai/internal/tracing"
)

// Strategy selects how the model reply is turned into JSON.
type Strategy int

const (
	// StrategyExtractJSON sends a plain completion and extracts JSON from the reply text.
	StrategyExtractJSON Strategy = iota
	// StrategyStructured asks the provider to enforce the capability schema.
	StrategyStructured
)

func (s Strategy) String() string {
	if s == StrategyStructured {
		return "structured"
	}
	return "extract_json"
}

// SelectStrategy picks the structured strategy when the client supports it,
// unless mode forces extraction.
func SelectStrategy(client port.ChatClient, mode string) Strategy {
	if mode == config.StructuredOutputExtract || !client.SupportsStructuredOutput() {
		return StrategyExtractJSON
	}
	return StrategyStructured
}

// Options configures an Agent.
type Options struct {
	Retry            RetryPolicy
	Image            config.ImageConfig
	StructuredOutput string
	Tracer           tracing.Tracer
	// Timeout bounds the model calls of one Invoke, retries included.
	// Zero means no bound beyond the caller's context.
	Timeout          time.Duration
}

// Agent invokes a vision model for one capability. It is safe for concurrent use.
type Agent[P, R any] struct {
	capability Capability[P, R]
	client     port.ChatClient
	strategy   Strategy
	retry      RetryPolicy
	maxWidth   int
	maxHeight  int
	maxPixels  int
	timeout    time.Duration
	tracer     tracing.Tracer
}

// New creates an Agent bound to a capability and a chat client.
func New[P, R any](capability Capability[P, R], client port.ChatClient, opts Options) *Agent[P, R] {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.Noop{}
	}
	retry := opts.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy()
	}
	return &Agent[P, R]{
		capability: capability,
		client:     client,
		strategy:   SelectStrategy(client, opts.StructuredOutput),
		retry:      retry,
		maxWidth:   opts.Image.MaxWidth,
		maxHeight:  opts.Image.MaxHeight,
		maxPixels:  opts.Image.MaxPixels,
		timeout:    opts.Timeout,
		tracer:     tracer,
	}
}

// Strategy reports the strategy chosen at construction.
func (a *Agent[P, R]) Strategy() Strategy {
	return a.strategy
}

// Invoke prepares the image, prompts the model and parses its reply, retrying
// failed attempts according to the retry policy.
func (a *Agent[P, R]) Invoke(ctx context.Context, image []byte, params P) (R, error) {
	var zero R
	name := string(a.capability.Name())
	provider := a.client.Provider()
	logger := zerolog.Ctx(ctx).With().
		Str("component", "agent").
		Str("capability", name).
		Str("provider", provider).
		Str("model", a.client.Model()).
		Logger()

	prepared, err := imaging.Prepare(image, a.maxWidth, a.maxHeight, a.maxPixels)
	if err != nil {
		return zero, err
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	req := a.buildRequest(prepared, params)

	run := a.tracer.Start(ctx, name, map[string]any{
		"provider":    provider,
		"model":       a.client.Model(),
		"strategy":    a.strategy.String(),
		"user_prompt": req.Messages[1].Text(),
		"image_bytes": len(prepared.Data),
		"mime_type":   prepared.MIMEType,
	})

	logger.Info().
		Str("strategy", a.strategy.String()).
		Int("image_bytes", len(prepared.Data)).
		Str("mime_type", prepared.MIMEType).
		Msg("invoking agent")

	start := time.Now()
	result, attempts, err := Retry(ctx, a.retry, func(ctx context.Context, attempt int) (R, error) {
		metrics.AgentAttemptsTotal.WithLabelValues(name, provider).Inc()
		r, err := a.attempt(ctx, req)
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("agent attempt failed")
			return zero, llm.Wrap(provider, err)
		}
		return r, nil
	})
	elapsed := time.Since(start)

	metrics.AgentDurationSeconds.WithLabelValues(name, provider).Observe(elapsed.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.AgentInvocationsTotal.WithLabelValues(name, provider, outcome).Inc()

	if err != nil {
		a.tracer.Finish(ctx, run, map[string]any{"attempts": attempts}, err)
		logger.Error().Err(err).Int("attempts", attempts).Dur("elapsed", elapsed).Msg("agent invocation failed")
		return zero, err
	}

	a.tracer.Finish(ctx, run, map[string]any{"attempts": attempts, "result": result}, nil)
	logger.Info().Int("attempts", attempts).Dur("elapsed", elapsed).Msg("agent invocation complete")
	return result, nil
}

func (a *Agent[P, R]) buildRequest(img imaging.Image, params P) port.ChatRequest {
	req := port.ChatRequest{
		Messages: []port.Message{
			{Role: port.RoleSystem, Parts: []port.ContentPart{port.TextPart(a.capability.SystemPrompt())}},
			{Role: port.RoleUser, Parts: []port.ContentPart{
				port.TextPart(a.capability.UserPrompt(params)),
				port.ImagePart(img.MIMEType, img.Data),
			}},
		},
	}
	if a.strategy == StrategyStructured {
		req.Schema = a.capability.Schema()
	}
	return req
}

func (a *Agent[P, R]) attempt(ctx context.Context, req port.ChatRequest) (R, error) {
	var zero R
	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		return zero, err
	}

	var data map[string]any
	if a.strategy == StrategyStructured {
		if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &data); err != nil || data == nil {
			return zero, llm.Errorf(a.client.Provider(), "structured reply is not a JSON object: %s", strconv.Quote(excerpt(resp.Text)))
		}
	} else {
		data, err = ExtractJSON(resp.Text)
		if err != nil {
			return zero, err
		}
	}
	return a.capability.ParseResponse(data)
}
