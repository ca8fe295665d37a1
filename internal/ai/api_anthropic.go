package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/neboloop/runbook/internal/logging"
)

// AnthropicProvider implements the Anthropic Claude API using the official SDK
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, baseURL, model string) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (p *AnthropicProvider) ID() string { return ProviderAnthropic }

func (p *AnthropicProvider) Model() string { return p.model }

func (p *AnthropicProvider) buildParams(req *ChatRequest) anthropic.MessageNewParams {
	system, rest := splitSystem(req.Messages)

	messages := make([]anthropic.MessageParam, 0, len(rest))
	for _, m := range rest {
		if m.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(requestModel(req, p.model)),
		MaxTokens: int64(DefaultAnthropicMaxTokens),
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if v, ok := req.Options.Int("max_tokens"); ok {
		params.MaxTokens = v
	}
	if v, ok := req.Options.Float("temperature"); ok {
		params.Temperature = anthropic.Float(v)
	}
	if v, ok := req.Options.Float("top_p"); ok {
		params.TopP = anthropic.Float(v)
	}
	if v, ok := req.Options.Int("top_k"); ok {
		params.TopK = anthropic.Int(v)
	}
	if v, ok := req.Options.Strings("stop_sequences"); ok {
		params.StopSequences = v
	}
	return params
}

// Stream sends a request and returns streaming events
func (p *AnthropicProvider) Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	params := p.buildParams(req)
	logging.Debugf("[anthropic] sending request: model=%s messages=%d", params.Model, len(params.Messages))

	stream := p.client.Messages.NewStreaming(ctx, params)

	events := make(chan StreamEvent, 100)
	go p.handleStream(stream, events)
	return events, nil
}

// handleStream processes the streaming response
func (p *AnthropicProvider) handleStream(stream *ssestream.Stream[anthropic.MessageStreamEventUnion], events chan<- StreamEvent) {
	defer close(events)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()

		switch event.Type {
		case "content_block_delta":
			delta := event.AsContentBlockDelta()
			if d, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok {
				events <- StreamEvent{Type: EventTypeText, Text: d.Text}
			}

		case "message_stop":
			events <- StreamEvent{Type: EventTypeDone}
			return

		case "error":
			events <- StreamEvent{
				Type:  EventTypeError,
				Error: fmt.Errorf("stream error: %s", event.RawJSON()),
			}
			return
		}
	}

	if err := stream.Err(); err != nil {
		logging.Warnf("[anthropic] stream error: %v", err)
		events <- StreamEvent{Type: EventTypeError, Error: err}
		return
	}
	events <- StreamEvent{Type: EventTypeDone}
}

// Complete sends a non-streaming request and returns the whole answer.
func (p *AnthropicProvider) Complete(ctx context.Context, req *ChatRequest) (*Completion, error) {
	params := p.buildParams(req)
	logging.Debugf("[anthropic] sending batch request: model=%s messages=%d", params.Model, len(params.Messages))

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return &Completion{Text: sb.String()}, nil
}
