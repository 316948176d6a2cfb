// Package tracing reports agent invocations as runs to a LangSmith-compatible
// tracing endpoint.
package tracing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"maestroai/internal/config"
)

// Run is one traced invocation.
type Run struct {
	ID        uuid.UUID
	Name      string
	StartTime time.Time
}

// Tracer records the start and end of runs. Implementations never fail the
// traced operation; reporting errors are logged and dropped.
type Tracer interface {
	Start(ctx context.Context, name string, inputs map[string]any) *Run
	Finish(ctx context.Context, run *Run, outputs map[string]any, err error)
	// Close waits for pending reports to be delivered.
	Close()
}

// New returns a LangSmith tracer when tracing is enabled and a no-op tracer otherwise.
func New(cfg config.TracingConfig, logger zerolog.Logger) Tracer {
	if !cfg.Enabled || cfg.APIKey == "" {
		return Noop{}
	}
	return NewLangSmith(cfg, logger)
}

// Noop is a Tracer that records nothing.
type Noop struct{}

func (Noop) Start(_ context.Context, name string, _ map[string]any) *Run {
	return &Run{ID: uuid.New(), Name: name, StartTime: time.Now().UTC()}
}

func (Noop) Finish(context.Context, *Run, map[string]any, error) {}

func (Noop) Close() {}
