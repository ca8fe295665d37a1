package ai

import (
	"context"
	"io"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamEventType defines the type of streaming event
type StreamEventType string

const (
	EventTypeText  StreamEventType = "text"
	EventTypeError StreamEventType = "error"
	EventTypeDone  StreamEventType = "done"
)

// StreamEvent represents a streaming response event. A text event with an
// empty Text is a valid, empty fragment.
type StreamEvent struct {
	Type  StreamEventType `json:"type"`
	Text  string          `json:"text,omitempty"`
	Error error           `json:"-"`
}

// ChatRequest represents a request to the AI provider
type ChatRequest struct {
	Model    string    `json:"model,omitempty"` // Overrides the provider's model
	Messages []Message `json:"messages"`
	Options  Options   `json:"options,omitempty"`
}

// Completion is a whole, non-streamed answer.
type Completion struct {
	Text string `json:"text"`
}

// Provider interface for AI providers
type Provider interface {
	// ID returns the provider tag (e.g. "ollama", "openai")
	ID() string

	// Model returns the model used when a request does not name one
	Model() string

	// Stream sends a request and returns a channel of streaming events.
	// The channel is closed after a done or error event.
	Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error)

	// Complete sends a request and waits for the whole answer.
	Complete(ctx context.Context, req *ChatRequest) (*Completion, error)
}

func requestModel(req *ChatRequest, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}

// splitSystem separates system messages from the conversation.
func splitSystem(msgs []Message) (system string, rest []Message) {
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// Release closes p if it holds resources, such as the Gemini SDK client.
func Release(p Provider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
