package ai

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/neboloop/runbook/internal/logging"
)

// OllamaProvider implements the Provider interface for Ollama (local models) using the official SDK
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(baseURL, model string, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute // local inference is slow
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		parsedURL, _ = url.Parse(DefaultOllamaURL)
	}

	return &OllamaProvider{
		client: api.NewClient(parsedURL, &http.Client{Timeout: timeout}),
		model:  model,
	}
}

func (p *OllamaProvider) ID() string { return ProviderOllama }

func (p *OllamaProvider) Model() string { return p.model }

func (p *OllamaProvider) buildRequest(req *ChatRequest, stream bool) *api.ChatRequest {
	messages := make([]api.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
	}
	chatReq := &api.ChatRequest{
		Model:    requestModel(req, p.model),
		Messages: messages,
		Stream:   &stream,
	}
	if len(req.Options) > 0 {
		chatReq.Options = make(map[string]any, len(req.Options))
		for k, v := range req.Options {
			chatReq.Options[k] = v
		}
	}
	return chatReq
}

// Stream sends a request to Ollama and streams the response
func (p *OllamaProvider) Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	chatReq := p.buildRequest(req, true)
	logging.Debugf("[ollama] sending request: model=%s messages=%d", chatReq.Model, len(chatReq.Messages))

	resultCh := make(chan StreamEvent, 100)
	go func() {
		defer close(resultCh)

		err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
			resultCh <- StreamEvent{Type: EventTypeText, Text: resp.Message.Content}
			return nil
		})
		if err != nil {
			logging.Warnf("[ollama] stream error: %v", err)
			resultCh <- StreamEvent{Type: EventTypeError, Error: err}
			return
		}
		resultCh <- StreamEvent{Type: EventTypeDone}
	}()

	return resultCh, nil
}

// Complete sends a non-streaming request and returns the whole answer.
func (p *OllamaProvider) Complete(ctx context.Context, req *ChatRequest) (*Completion, error) {
	chatReq := p.buildRequest(req, false)
	logging.Debugf("[ollama] sending batch request: model=%s messages=%d", chatReq.Model, len(chatReq.Messages))

	var sb strings.Builder
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Completion{Text: sb.String()}, nil
}
