package agent

import (
	"encoding/json"

	"maestroai/internal/domain"
	"maestroai/internal/port"
	"maestroai/internal/prompt"
)

// TextExtraction reads the text answering a query off a screenshot.
type TextExtraction struct{}

func (TextExtraction) Name() domain.Capability { return domain.CapabilityTextExtraction }

func (TextExtraction) SystemPrompt() string { return prompt.ExtractionSystemPrompt }

func (TextExtraction) UserPrompt(params prompt.ExtractionContext) string {
	return prompt.ExtractionUserPrompt(params.Query)
}

func (TextExtraction) Schema() *port.ResponseSchema {
	return &port.ResponseSchema{Name: string(domain.CapabilityTextExtraction), Schema: prompt.ExtractionSchema}
}

// ParseResponse reads the "text" field. Missing or null yields "", and
// non-string values are rendered as JSON.
func (TextExtraction) ParseResponse(data map[string]any) (string, error) {
	raw, ok := data["text"]
	if !ok || raw == nil {
		return "", nil
	}
	if s, ok := raw.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TextAgent is an Agent specialised for text extraction.
type TextAgent = Agent[prompt.ExtractionContext, string]

// NewTextAgent creates a text extraction agent.
func NewTextAgent(client port.ChatClient, opts Options) *TextAgent {
	return New[prompt.ExtractionContext, string](TextExtraction{}, client, opts)
}
