// Package agent turns a screenshot and per-request parameters into a typed
// capability result by prompting a vision model, retrying transient failures.
package agent

import (
	"maestroai/internal/domain"
	"maestroai/internal/port"
)

// Capability describes one thing an Agent can do with a screenshot: how to
// prompt for it and how to read the model's JSON reply.
type Capability[P, R any] interface {
	Name() domain.Capability
	SystemPrompt() string
	UserPrompt(params P) string
	// Schema is the reply schema used when the provider enforces structured output.
	Schema() *port.ResponseSchema
	ParseResponse(data map[string]any) (R, error)
}
