// Package claude implements port.ChatClient using the Anthropic Messages API.
package claude

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"maestroai/internal/config"
	"maestroai/internal/llm"
	"maestroai/internal/port"
)

const (
	apiBaseURL   = "https://api.anthropic.com/v1"
	apiVersion   = "2023-06-01"
	defaultModel = "claude-sonnet-4-20250514"

	defaultMaxTokens = 2048
)

func init() {
	llm.RegisterProvider(config.ProviderClaude, func(cfg *config.ProviderConfig) (port.ChatClient, error) {
		return NewClient(cfg), nil
	})
}

// Client implements port.ChatClient using the Anthropic Messages API.
type Client struct {
	apiKey    string
	model     string
	endpoint  string
	maxTokens int
	temp      *float64
	transport *llm.Transport
}

// NewClient creates a Claude chat client from a provider config.
func NewClient(cfg *config.ProviderConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = apiBaseURL
	}
	return newClient(cfg, strings.TrimRight(baseURL, "/")+"/messages")
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
	return &Client{
		apiKey:    cfg.APIKey,
		model:     model,
		endpoint:  endpoint,
		maxTokens: maxTokens,
		temp:      cfg.Temperature,
		transport: llm.NewTransport(cfg),
	}
}

func (c *Client) Provider() string { return config.ProviderClaude }

func (c *Client) Model() string { return c.model }

func (c *Client) SupportsStructuredOutput() bool { return false }

// Transport exposes the HTTP transport so callers can tune retries.
func (c *Client) Transport() *llm.Transport { return c.transport }

func (c *Client) Complete(ctx context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	var system []string
	messages := make([]map[string]interface{}, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == port.RoleSystem {
			system = append(system, m.Text())
			continue
		}
		messages = append(messages, map[string]interface{}{
			"role":    string(m.Role),
			"content": buildContentBlocks(m.Parts),
		})
	}

	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages":   messages,
	}
	if len(system) > 0 {
		reqBody["system"] = strings.Join(system, "\n\n")
	}
	if c.temp != nil {
		reqBody["temperature"] = *c.temp
	}

	respBody, err := c.transport.PostJSON(ctx, c.endpoint, map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": apiVersion,
	}, reqBody)
	if err != nil {
		return nil, err
	}

	return c.parseResponse(respBody)
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
			blocks = append(blocks, map[string]interface{}{
				"type": "image",
				"source": map[string]interface{}{
					"type":       "base64",
					"media_type": p.MIMEType,
					"data":       base64.StdEncoding.EncodeToString(p.Data),
				},
			})
		}
	}
	return blocks
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (c *Client) parseResponse(body []byte) (*port.ChatResponse, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, llm.Errorf(config.ProviderClaude, "unmarshaling response: %w", err)
	}

	if resp.StopReason == "max_tokens" {
		return nil, llm.Errorf(config.ProviderClaude, "output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, llm.Errorf(config.ProviderClaude, "empty response from API")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return &port.ChatResponse{
		Text:         text.String(),
		Model:        model,
		FinishReason: resp.StopReason,
	}, nil
}
