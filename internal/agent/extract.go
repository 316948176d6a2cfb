package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"maestroai/internal/domain"
)

const excerptLen = 200

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// ResponseParseError reports a model reply no JSON object could be read from.
type ResponseParseError struct {
	Excerpt string
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("no JSON object found in llm response: %q", e.Excerpt)
}

func (e *ResponseParseError) Is(target error) bool {
	return target == domain.ErrResponseParse
}

// ExtractJSON reads a JSON object from free-form model text. The whole text
// is tried first, then each fenced code block in order.
func ExtractJSON(text string) (map[string]any, error) {
	if data, ok := parseObject(text); ok {
		return data, nil
	}
	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		if data, ok := parseObject(m[1]); ok {
			return data, nil
		}
	}
	return nil, &ResponseParseError{Excerpt: excerpt(text)}
}

func parseObject(s string) (map[string]any, bool) {
	var data map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &data); err != nil || data == nil {
		return nil, false
	}
	return data, true
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return string(r[:excerptLen])
}
