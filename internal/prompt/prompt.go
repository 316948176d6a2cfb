// Package prompt holds the instruction templates and response schemas sent to
// the vision model for each capability.
package prompt

import (
	"encoding/json"
	"strings"
)

// DefectContext carries the per-request parameters for defect detection.
type DefectContext struct {
	Assertion *string
}

// ExtractionContext carries the per-request parameters for text extraction.
type ExtractionContext struct {
	Query string
}

// DefectSystemPrompt instructs the model to act as a UI quality inspector.
const DefectSystemPrompt = `You are an expert UI/UX quality inspector. Your task is to analyze screenshots of mobile applications and web pages and identify defects and problems in them.

## Defect categories
Report defects using exactly one of the following categories:
- **UI_BUG**: layout problems, overlapping elements, truncated text, images that failed to load, etc.
- **ACCESSIBILITY**: accessibility problems such as insufficient contrast or touch targets that are too small.
- **CONTENT_ERROR**: content problems such as spelling mistakes, garbled characters or leftover placeholder text.
- **PERFORMANCE_INDICATOR**: signs of performance problems such as a loading indicator that appears stuck.
- **ASSERTION_FAILED**: the screenshot does not satisfy the assertion (use only when an assertion is provided).

## Output requirements
1. Examine every visible element of the screenshot carefully.
2. For each defect found, give a precise category and a detailed reasoning.
3. If no defects are found, return an empty defect list.
4. The reasoning must be specific and actionable so a developer can understand and fix the problem.

## Notes
- Only report problems that are actually visible. Do not guess about content that cannot be seen.
- When an assertion is provided, judge it strictly as written by the user.`

const defectUserPromptTemplate = `Analyze this screenshot and identify the UI defects and problems in it.

{assertion_section}

Return the result in the following JSON format:
` + "```json" + `
{
  "defects": [
    {
      "category": "defect category",
      "reasoning": "detailed reasoning"
    }
  ]
}
` + "```" + `

If no defects are found, return:
` + "```json" + `
{
  "defects": []
}
` + "```"

const assertionSectionTemplate = `**Assertion**: {assertion}

Verify whether the screenshot satisfies the assertion above. If it does not, add a defect with category "ASSERTION_FAILED" to the defect list and explain in its reasoning why the assertion failed.`

const genericDefectSection = "Detect all visible UI defects and problems."

// DefectUserPrompt renders the user instructions for defect detection. A nil
// or blank assertion selects the generic detection instruction.
func DefectUserPrompt(assertion *string) string {
	section := genericDefectSection
	if assertion != nil && strings.TrimSpace(*assertion) != "" {
		section = strings.Replace(assertionSectionTemplate, "{assertion}", *assertion, 1)
	}
	return strings.Replace(defectUserPromptTemplate, "{assertion_section}", section, 1)
}

// ExtractionSystemPrompt instructs the model to read text off a screenshot.
const ExtractionSystemPrompt = `You are a precise screen-reading assistant. You receive a screenshot of a mobile application or web page together with a query, and you extract from the screenshot the text that answers the query.

## Rules
- Answer only from what is visible in the screenshot. Never invent text.
- Return the text exactly as it appears, preserving characters, symbols, currency signs and capitalization.
- Do not add explanations, labels or surrounding quotes to the extracted text.
- If nothing in the screenshot answers the query, return an empty string.`

const extractionUserPromptTemplate = `Query: {query}

Extract the text in this screenshot that answers the query above.

Return the result in the following JSON format:
` + "```json" + `
{
  "text": "extracted text"
}
` + "```" + `

If nothing matches the query, return:
` + "```json" + `
{
  "text": ""
}
` + "```"

// ExtractionUserPrompt renders the user instructions for text extraction.
func ExtractionUserPrompt(query string) string {
	return strings.Replace(extractionUserPromptTemplate, "{query}", query, 1)
}

// DefectSchema is the JSON schema of a defect detection reply.
var DefectSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "defects": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "category": {
            "type": "string",
            "enum": ["UI_BUG", "ACCESSIBILITY", "CONTENT_ERROR", "PERFORMANCE_INDICATOR", "ASSERTION_FAILED"]
          },
          "reasoning": {"type": "string"}
        },
        "required": ["category", "reasoning"],
        "additionalProperties": false
      }
    }
  },
  "required": ["defects"],
  "additionalProperties": false
}`)

// ExtractionSchema is the JSON schema of a text extraction reply.
var ExtractionSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "text": {"type": "string"}
  },
  "required": ["text"],
  "additionalProperties": false
}`)
