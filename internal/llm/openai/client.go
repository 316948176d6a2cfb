// Package openai implements port.ChatClient for OpenAI-compatible chat
// completion APIs. It serves both the OpenAI and the Kimi (Moonshot) providers.
package openai

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
	openAIBaseURL = "https://api.openai.com/v1"
	kimiBaseURL   = "https://api.moonshot.cn/v1"

	openAIModel = "gpt-4o"
	kimiModel   = "moonshot-v1-8k-vision-preview"

	defaultMaxTokens = 2048
)

func init() {
	factory := func(cfg *config.ProviderConfig) (port.ChatClient, error) {
		return NewClient(cfg), nil
	}
	llm.RegisterProvider(config.ProviderOpenAI, factory)
	llm.RegisterProvider(config.ProviderKimi, factory)
}

// Client implements port.ChatClient using the Chat Completions API.
type Client struct {
	provider   string
	apiKey     string
	model      string
	endpoint   string
	maxTokens  int
	temp       *float64
	structured bool
	transport  *llm.Transport
}

// NewClient creates a chat client from a provider config. An empty base URL
// or model falls back to the provider's defaults.
func NewClient(cfg *config.ProviderConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL(cfg.Provider)
	}
	return newClient(cfg, strings.TrimRight(baseURL, "/")+"/chat/completions")
}

// NewClientWithEndpoint creates a client pointing at a custom completions endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ProviderConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = defaultModel(cfg.Provider)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		provider:   cfg.Provider,
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		maxTokens:  maxTokens,
		temp:       cfg.Temperature,
		structured: cfg.Provider == config.ProviderOpenAI,
		transport:  llm.NewTransport(cfg),
	}
}

func (c *Client) Provider() string { return c.provider }

func (c *Client) Model() string { return c.model }

// SupportsStructuredOutput is true for OpenAI, which enforces json_schema
// response formats. Moonshot does not.
func (c *Client) SupportsStructuredOutput() bool { return c.structured }

// Transport exposes the HTTP transport so callers can tune retries.
func (c *Client) Transport() *llm.Transport { return c.transport }

func (c *Client) Complete(ctx context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	reqBody := map[string]interface{}{
		"model":    c.model,
		"messages": buildMessages(req.Messages),
	}
	if c.provider == config.ProviderOpenAI {
		reqBody["max_completion_tokens"] = c.maxTokens
	} else {
		reqBody["max_tokens"] = c.maxTokens
	}
	if c.temp != nil {
		reqBody["temperature"] = *c.temp
	}
	if req.Schema != nil && c.structured {
		reqBody["response_format"] = map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   req.Schema.Name,
				"schema": req.Schema.Schema,
				"strict": true,
			},
		}
	}

	respBody, err := c.transport.PostJSON(ctx, c.endpoint, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, reqBody)
	if err != nil {
		return nil, err
	}

	return c.parseResponse(respBody)
}

func buildMessages(messages []port.Message) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(messages))
	for _, m := range messages {
		if m.Role == port.RoleSystem {
			out = append(out, map[string]interface{}{
				"role":    string(m.Role),
				"content": m.Text(),
			})
			continue
		}
		out = append(out, map[string]interface{}{
			"role":    string(m.Role),
			"content": buildContentBlocks(m.Parts),
		})
	}
	return out
}

func buildContentBlocks(parts []port.ContentPart) []map[string]interface{} {
	blocks := make([]map[string]interface{}, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case port.PartText:
			blocks = append(blocks, map[string]interface{}{
				"type": "text",
				"text": p.Text,
			})
		case port.PartImage:
			dataURI := fmt.Sprintf("data:%s;base64,%s", p.MIMEType, base64.StdEncoding.EncodeToString(p.Data))
			blocks = append(blocks, map[string]interface{}{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url": dataURI,
				},
			})
		}
	}
	return blocks
}

// apiResponse models the Chat Completions API response.
type apiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *Client) parseResponse(body []byte) (*port.ChatResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, llm.Errorf(c.provider, "unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.Errorf(c.provider, "empty response from API: no choices")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		return nil, llm.Errorf(c.provider, "output truncated (finish_reason: length): response exceeded output token limit")
	}
	if choice.Message.Refusal != "" {
		return nil, llm.Errorf(c.provider, "model refused: %s", llm.Truncate(choice.Message.Refusal, 200))
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, llm.Errorf(c.provider, "empty response from API: no content")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &port.ChatResponse{
		Text:         choice.Message.Content,
		Model:        model,
		FinishReason: choice.FinishReason,
	}, nil
}

func defaultBaseURL(provider string) string {
	if provider == config.ProviderKimi {
		return kimiBaseURL
	}
	return openAIBaseURL
}

func defaultModel(provider string) string {
	if provider == config.ProviderKimi {
		return kimiModel
	}
	return openAIModel
}
