package ai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"

	"github.com/neboloop/runbook/internal/logging"
)

// OpenAIProvider implements the OpenAI chat completions API using the official
// SDK. It also serves OpenAI-compatible endpoints such as Together.
type OpenAIProvider struct {
	id     string
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a provider reporting id as its tag. An empty
// baseURL uses the SDK default.
func NewOpenAIProvider(id, apiKey, baseURL, model string) *OpenAIProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		id:     id,
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (p *OpenAIProvider) ID() string { return p.id }

func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) buildParams(req *ChatRequest) (openai.ChatCompletionNewParams, []option.RequestOption) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(requestModel(req, p.model)),
		Messages: messages,
	}
	if v, ok := req.Options.Int("max_tokens"); ok {
		params.MaxTokens = openai.Int(v)
	}
	if v, ok := req.Options.Int("max_completion_tokens"); ok {
		params.MaxCompletionTokens = openai.Int(v)
	}
	if v, ok := req.Options.Float("temperature"); ok {
		params.Temperature = openai.Float(v)
	}
	if v, ok := req.Options.Float("top_p"); ok {
		params.TopP = openai.Float(v)
	}
	if v, ok := req.Options.Float("frequency_penalty"); ok {
		params.FrequencyPenalty = openai.Float(v)
	}

	var opts []option.RequestOption
	if stop, ok := req.Options.Strings("stop"); ok {
		opts = append(opts, option.WithJSONSet("stop", stop))
	}
	return params, opts
}

// Stream sends a request and returns streaming events
func (p *OpenAIProvider) Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	params, opts := p.buildParams(req)
	logging.Debugf("[%s] sending request: model=%s messages=%d", p.id, params.Model, len(params.Messages))

	stream := p.client.Chat.Completions.NewStreaming(ctx, params, opts...)

	events := make(chan StreamEvent, 100)
	go p.handleStream(stream, events)
	return events, nil
}

// handleStream processes the streaming response
func (p *OpenAIProvider) handleStream(stream *ssestream.Stream[openai.ChatCompletionChunk], events chan<- StreamEvent) {
	defer close(events)
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) > 0 {
			events <- StreamEvent{
				Type: EventTypeText,
				Text: chunk.Choices[0].Delta.Content,
			}
		}
	}

	if err := stream.Err(); err != nil {
		logging.Warnf("[%s] stream error: %v", p.id, err)
		events <- StreamEvent{Type: EventTypeError, Error: err}
		return
	}
	events <- StreamEvent{Type: EventTypeDone}
}

// Complete sends a non-streaming request and returns the whole answer.
func (p *OpenAIProvider) Complete(ctx context.Context, req *ChatRequest) (*Completion, error) {
	params, opts := p.buildParams(req)
	logging.Debugf("[%s] sending batch request: model=%s messages=%d", p.id, params.Model, len(params.Messages))

	resp, err := p.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	if len(resp.Choices) == 0 {
		return &Completion{}, nil
	}
	return &Completion{Text: resp.Choices[0].Message.Content}, nil
}
