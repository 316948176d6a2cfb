package agent_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maestroai/internal/agent"
	"maestroai/internal/domain"
)

const rawDefects = `{"defects": [{"category": "UI_BUG", "reasoning": "button overlaps header"}]}`

func TestExtractJSON_RawObject(t *testing.T) {
	data, err := agent.ExtractJSON(rawDefects)

	require.NoError(t, err)
	assert.Len(t, data["defects"], 1)
}

func TestExtractJSON_FencedEqualsRaw(t *testing.T) {
	raw, err := agent.ExtractJSON(rawDefects)
	require.NoError(t, err)

	for _, text := range []string{
		"```json\n" + rawDefects + "\n```",
		"Here is the analysis:\n```json\n" + rawDefects + "\n```\nLet me know if you need more.",
		"```\n" + rawDefects + "\n```",
		"```JSON\n" + rawDefects + "```",
		"  " + rawDefects + "\n\n",
	} {
		fenced, err := agent.ExtractJSON(text)
		require.NoError(t, err, text)
		assert.Equal(t, raw, fenced, text)
	}
}

func TestExtractJSON_FirstParsableBlockWins(t *testing.T) {
	text := "```python\nprint('hi')\n```\nthen\n```json\n{\"text\": \"first\"}\n```\n```json\n{\"text\": \"second\"}\n```"

	data, err := agent.ExtractJSON(text)

	require.NoError(t, err)
	assert.Equal(t, "first", data["text"])
}

func TestExtractJSON_NoJSON(t *testing.T) {
	text := strings.Repeat("I could not analyze this screenshot. ", 20)

	_, err := agent.ExtractJSON(text)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResponseParse)
	assert.NotErrorIs(t, err, domain.ErrLLM)
	var parseErr *agent.ResponseParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Len(t, []rune(parseErr.Excerpt), 200)
	assert.True(t, strings.HasPrefix(text, parseErr.Excerpt))
}

func TestExtractJSON_NonObjectRejected(t *testing.T) {
	for _, text := range []string{`[1, 2, 3]`, `"just a string"`, `null`, "```json\n[]\n```", ""} {
		_, err := agent.ExtractJSON(text)
		assert.ErrorIs(t, err, domain.ErrResponseParse, text)
	}
}

func TestExtractJSON_ShortExcerptKeptWhole(t *testing.T) {
	_, err := agent.ExtractJSON("nope")

	var parseErr *agent.ResponseParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "nope", parseErr.Excerpt)
	assert.Contains(t, err.Error(), "nope")
}
