package port

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType distinguishes the content parts of a multimodal message.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// ContentPart is one element of a multimodal message. Image parts carry raw
// bytes; each provider renders them in its own wire format.
type ContentPart struct {
	Type     PartType
	Text     string
	MIMEType string
	Data     []byte
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// ImagePart builds an image content part.
func ImagePart(mimeType string, data []byte) ContentPart {
	return ContentPart{Type: PartImage, MIMEType: mimeType, Data: data}
}

// Message is a single chat message.
type Message struct {
	Role  Role
	Parts []ContentPart
}

// Text concatenates the text parts of the message.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Type == PartText {
			out += p.Text
		}
	}
	return out
}

// ResponseSchema asks the provider to constrain its reply to a JSON schema.
type ResponseSchema struct {
	Name   string
	Schema json.RawMessage
}

// ChatRequest carries one chat completion call.
type ChatRequest struct {
	Messages []Message
	Schema   *ResponseSchema
}

// ChatResponse is the provider reply reduced to what the agents consume.
type ChatResponse struct {
	Text         string
	Model        string
	FinishReason string
}

// ChatClient abstracts a vision-capable chat completion provider.
// Implementations must be safe for concurrent use.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Provider() string
	Model() string
	// SupportsStructuredOutput reports whether the provider can enforce
	// ChatRequest.Schema on its reply.
	SupportsStructuredOutput() bool
}
