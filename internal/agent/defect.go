package agent

import (
	"fmt"
	"strings"

	"maestroai/internal/domain"
	"maestroai/internal/port"
	"maestroai/internal/prompt"
)

// DefectDetection finds UI defects and evaluates an optional assertion.
type DefectDetection struct{}

func (DefectDetection) Name() domain.Capability { return domain.CapabilityDefectDetection }

func (DefectDetection) SystemPrompt() string { return prompt.DefectSystemPrompt }

func (DefectDetection) UserPrompt(params prompt.DefectContext) string {
	return prompt.DefectUserPrompt(params.Assertion)
}

func (DefectDetection) Schema() *port.ResponseSchema {
	return &port.ResponseSchema{Name: string(domain.CapabilityDefectDetection), Schema: prompt.DefectSchema}
}

// ParseResponse reads the "defects" list. A missing list means no defects;
// entries that are not objects are skipped.
func (DefectDetection) ParseResponse(data map[string]any) ([]domain.Defect, error) {
	defects := []domain.Defect{}
	raw, ok := data["defects"]
	if !ok || raw == nil {
		return defects, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: \"defects\" is %T, not a list", domain.ErrResponseParse, raw)
	}

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		category, _ := obj["category"].(string)
		category = strings.TrimSpace(category)
		if category == "" {
			category = string(domain.CategoryUnknown)
		}
		reasoning, _ := obj["reasoning"].(string)
		defects = append(defects, domain.Defect{Category: category, Reasoning: reasoning})
	}
	return defects, nil
}

// DefectAgent is an Agent specialised for defect detection.
type DefectAgent = Agent[prompt.DefectContext, []domain.Defect]

// NewDefectAgent creates a defect detection agent.
func NewDefectAgent(client port.ChatClient, opts Options) *DefectAgent {
	return New[prompt.DefectContext, []domain.Defect](DefectDetection{}, client, opts)
}
