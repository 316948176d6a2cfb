// Package gemini implements port.ChatClient using Google's Gemini API.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"maestroai/internal/config"
	"maestroai/internal/llm"
	"maestroai/internal/port"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel = "gemini-2.0-flash"

	defaultMaxTokens = 2048
)

func init() {
	llm.RegisterProvider(config.ProviderGemini, func(cfg *config.ProviderConfig) (port.ChatClient, error) {
		return NewClient(cfg), nil
	})
}

// Client implements port.ChatClient using the generateContent endpoint.
type Client struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	temp      *float64
	transport *llm.Transport
}

// NewClient creates a Gemini chat client from a provider config.
func NewClient(cfg *config.ProviderConfig) *Client {
	return newClient(cfg, "")
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ProviderConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if endpoint == "" {
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = apiBaseURL
		}
		endpoint = fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(baseURL, "/"), model)
	}
	return &Client{
		apiKey:    cfg.APIKey,
		model:     model,
		endpoint:  endpoint,
		maxTokens: maxTokens,
		temp:      cfg.Temperature,
		transport: llm.NewTransport(cfg),
	}
}

func (c *Client) Provider() string { return config.ProviderGemini }

func (c *Client) Model() string { return c.model }

func (c *Client) SupportsStructuredOutput() bool { return true }

// Transport exposes the HTTP transport so callers can tune retries.
func (c *Client) Transport() *llm.Transport { return c.transport }

func (c *Client) Complete(ctx context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	var system []map[string]interface{}
	contents := make([]map[string]interface{}, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == port.RoleSystem {
			system = append(system, map[string]interface{}{"text": m.Text()})
			continue
		}
		role := "user"
		if m.Role == port.RoleAssistant {
			role = "model"
		}
		contents = append(contents, map[string]interface{}{
			"role":  role,
			"parts": buildParts(m.Parts),
		})
	}

	generationConfig := map[string]interface{}{
		"maxOutputTokens": c.maxTokens,
	}
	if c.temp != nil {
		generationConfig["temperature"] = *c.temp
	}
	if req.Schema != nil {
		schema, err := toGeminiSchema(req.Schema.Schema)
		if err != nil {
			return nil, fmt.Errorf("converting response schema: %w", err)
		}
		generationConfig["responseMimeType"] = "application/json"
		generationConfig["responseSchema"] = schema
	}

	reqBody := map[string]interface{}{
		"contents":         contents,
		"generationConfig": generationConfig,
	}
	if len(system) > 0 {
		reqBody["systemInstruction"] = map[string]interface{}{"parts": system}
	}

	respBody, err := c.transport.PostJSON(ctx, c.endpoint, map[string]string{
		"x-goog-api-key": c.apiKey,
	}, reqBody)
	if err != nil {
		return nil, err
	}

	return c.parseResponse(respBody)
}

func buildParts(parts []port.ContentPart) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case port.PartText:
			out = append(out, map[string]interface{}{"text": p.Text})
		case port.PartImage:
			out = append(out, map[string]interface{}{
				"inline_data": map[string]interface{}{
					"mime_type": p.MIMEType,
					"data":      base64.StdEncoding.EncodeToString(p.Data),
				},
			})
		}
	}
	return out
}

// toGeminiSchema converts a JSON schema into the OpenAPI subset Gemini
// accepts: upper-case type names and no additionalProperties.
func toGeminiSchema(raw json.RawMessage) (map[string]interface{}, error) {
	var schema map[string]interface{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	sanitizeSchema(schema)
	return schema, nil
}

func sanitizeSchema(node map[string]interface{}) {
	delete(node, "additionalProperties")
	if t, ok := node["type"].(string); ok {
		node["type"] = strings.ToUpper(t)
	}
	if props, ok := node["properties"].(map[string]interface{}); ok {
		for _, p := range props {
			if child, ok := p.(map[string]interface{}); ok {
				sanitizeSchema(child)
			}
		}
	}
	if items, ok := node["items"].(map[string]interface{}); ok {
		sanitizeSchema(items)
	}
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	ModelVersion string `json:"modelVersion"`
	Candidates   []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (c *Client) parseResponse(body []byte) (*port.ChatResponse, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, llm.Errorf(config.ProviderGemini, "unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback.BlockReason != "" {
			return nil, llm.Errorf(config.ProviderGemini, "prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, llm.Errorf(config.ProviderGemini, "empty response from API: no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == "MAX_TOKENS" {
		return nil, llm.Errorf(config.ProviderGemini, "output truncated (finishReason: MAX_TOKENS): response exceeded output token limit")
	}
	if len(candidate.Content.Parts) == 0 {
		return nil, llm.Errorf(config.ProviderGemini, "empty response from API: no parts")
	}

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, llm.Errorf(config.ProviderGemini, "empty response from API: no text")
	}

	model := resp.ModelVersion
	if model == "" {
		model = c.model
	}
	return &port.ChatResponse{
		Text:         text.String(),
		Model:        model,
		FinishReason: candidate.FinishReason,
	}, nil
}
