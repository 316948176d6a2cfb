package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maestroai/internal/config"
	"maestroai/internal/domain"
	"maestroai/internal/llm"
	"maestroai/internal/llm/openai"
	"maestroai/internal/port"
)

func newTestClient(provider, serverURL string) *openai.Client {
	cfg := &config.ProviderConfig{
		Provider:    provider,
		APIKey:      "test-key",
		TimeoutSecs: 30,
	}
	return openai.NewClientWithEndpoint(cfg, serverURL)
}

func successResponse(content, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"model": "gpt-4o-2024-08-06",
		"choices": []map[string]interface{}{
			{
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": finishReason,
			},
		},
	}
}

func visionRequest(schema *port.ResponseSchema) port.ChatRequest {
	return port.ChatRequest{
		Messages: []port.Message{
			{Role: port.RoleSystem, Parts: []port.ContentPart{port.TextPart("system instructions")}},
			{Role: port.RoleUser, Parts: []port.ContentPart{
				port.TextPart("find defects"),
				port.ImagePart("image/png", []byte{0x89, 'P', 'N', 'G'}),
			}},
		},
		Schema: schema,
	}
}

func TestClient_Complete_OpenAIStructured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o", reqBody["model"])
		assert.Equal(t, float64(2048), reqBody["max_completion_tokens"])
		assert.NotContains(t, reqBody, "temperature")

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 2)
		system := messages[0].(map[string]interface{})
		assert.Equal(t, "system", system["role"])
		assert.Equal(t, "system instructions", system["content"])

		user := messages[1].(map[string]interface{})
		blocks := user["content"].([]interface{})
		require.Len(t, blocks, 2)
		assert.Equal(t, "text", blocks[0].(map[string]interface{})["type"])
		image := blocks[1].(map[string]interface{})
		assert.Equal(t, "image_url", image["type"])
		assert.Equal(t, "data:image/png;base64,iVBORw==", image["image_url"].(map[string]interface{})["url"])

		format := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_schema", format["type"])
		jsonSchema := format["json_schema"].(map[string]interface{})
		assert.Equal(t, "defect_detection", jsonSchema["name"])
		assert.Equal(t, true, jsonSchema["strict"])
		assert.Equal(t, "object", jsonSchema["schema"].(map[string]interface{})["type"])

		_ = json.NewEncoder(w).Encode(successResponse(`{"defects":[]}`, "stop"))
	}))
	defer server.Close()

	c := newTestClient(config.ProviderOpenAI, server.URL)
	assert.True(t, c.SupportsStructuredOutput())
	assert.Equal(t, "openai", c.Provider())

	resp, err := c.Complete(context.Background(), visionRequest(&port.ResponseSchema{
		Name:   "defect_detection",
		Schema: json.RawMessage(`{"type":"object"}`),
	}))

	require.NoError(t, err)
	assert.Equal(t, `{"defects":[]}`, resp.Text)
	assert.Equal(t, "gpt-4o-2024-08-06", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestClient_Complete_KimiIgnoresSchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "moonshot-v1-8k-vision-preview", reqBody["model"])
		assert.Equal(t, float64(2048), reqBody["max_tokens"])
		assert.NotContains(t, reqBody, "response_format")
		assert.NotContains(t, reqBody, "max_completion_tokens")

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": "```json\n{\"text\":\"$12.99\"}\n```"}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	c := newTestClient(config.ProviderKimi, server.URL)
	assert.False(t, c.SupportsStructuredOutput())

	resp, err := c.Complete(context.Background(), visionRequest(&port.ResponseSchema{Name: "x", Schema: json.RawMessage(`{}`)}))

	require.NoError(t, err)
	assert.Contains(t, resp.Text, "$12.99")
	assert.Equal(t, "moonshot-v1-8k-vision-preview", resp.Model)
}

func TestClient_Complete_Temperature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, 0.2, reqBody["temperature"])
		_ = json.NewEncoder(w).Encode(successResponse("ok", "stop"))
	}))
	defer server.Close()

	temp := 0.2
	c := openai.NewClientWithEndpoint(&config.ProviderConfig{Provider: config.ProviderKimi, Temperature: &temp}, server.URL)
	_, err := c.Complete(context.Background(), visionRequest(nil))

	require.NoError(t, err)
}

func TestClient_Complete_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(successResponse(`{"defects":[`, "length"))
	}))
	defer server.Close()

	_, err := newTestClient(config.ProviderOpenAI, server.URL).Complete(context.Background(), visionRequest(nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLM)
	assert.Contains(t, err.Error(), "truncated")
}

func TestClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(config.ProviderOpenAI, server.URL).Complete(context.Background(), visionRequest(nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLM)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClient_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(successResponse("  ", "stop"))
	}))
	defer server.Close()

	_, err := newTestClient(config.ProviderOpenAI, server.URL).Complete(context.Background(), visionRequest(nil))

	assert.ErrorIs(t, err, domain.ErrLLM)
}

func TestClient_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(config.ProviderOpenAI, server.URL).Complete(context.Background(), visionRequest(nil))

	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
	assert.ErrorIs(t, err, domain.ErrLLM)
}

func TestNewClient_DefaultsPerProvider(t *testing.T) {
	kimi := openai.NewClient(&config.ProviderConfig{Provider: config.ProviderKimi})
	assert.Equal(t, "moonshot-v1-8k-vision-preview", kimi.Model())

	oa := openai.NewClient(&config.ProviderConfig{Provider: config.ProviderOpenAI, Model: "gpt-4.1"})
	assert.Equal(t, "gpt-4.1", oa.Model())
}

func TestRegistry_ProvidesKimiAndOpenAI(t *testing.T) {
	for _, provider := range []string{config.ProviderKimi, config.ProviderOpenAI} {
		c, err := llm.NewClient(&config.ProviderConfig{Provider: provider})
		require.NoError(t, err)
		assert.Equal(t, provider, c.Provider())
	}
}
