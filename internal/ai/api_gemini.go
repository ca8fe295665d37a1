package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/neboloop/runbook/internal/logging"
)

// GeminiProvider implements the Google Gemini API. The SDK client is created on
// first use so that construction stays offline.
type GeminiProvider struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{apiKey: apiKey, model: model}
}

func (p *GeminiProvider) ID() string { return ProviderGemini }

func (p *GeminiProvider) Model() string { return p.model }

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

// Close releases the SDK client if one was created.
func (p *GeminiProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

// prepare builds a chat session holding every message but the last, which is
// returned as the parts to send.
func (p *GeminiProvider) prepare(ctx context.Context, req *ChatRequest) (*genai.ChatSession, []genai.Part, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	model := client.GenerativeModel(requestModel(req, p.model))
	if v, ok := req.Options.Float("temperature"); ok {
		model.SetTemperature(float32(v))
	}
	if v, ok := req.Options.Float("top_p"); ok {
		model.SetTopP(float32(v))
	}
	if v, ok := req.Options.Int("top_k"); ok {
		model.SetTopK(int32(v))
	}
	if v, ok := req.Options.Int("max_output_tokens"); ok {
		model.SetMaxOutputTokens(int32(v))
	}
	if v, ok := req.Options.Strings("stop_sequences"); ok {
		model.StopSequences = v
	}

	system, rest := splitSystem(req.Messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(rest) == 0 {
		return nil, nil, errors.New("gemini: no user message")
	}

	cs := model.StartChat()
	for _, m := range rest[:len(rest)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	last := rest[len(rest)-1]
	return cs, []genai.Part{genai.Text(last.Content)}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	return sb.String()
}

// Stream sends a request and returns streaming events
func (p *GeminiProvider) Stream(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	cs, parts, err := p.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	logging.Debugf("[gemini] sending request: model=%s history=%d", requestModel(req, p.model), len(cs.History))

	iter := cs.SendMessageStream(ctx, parts...)

	events := make(chan StreamEvent, 100)
	go func() {
		defer close(events)
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				events <- StreamEvent{Type: EventTypeDone}
				return
			}
			if err != nil {
				logging.Warnf("[gemini] stream error: %v", err)
				events <- StreamEvent{Type: EventTypeError, Error: err}
				return
			}
			events <- StreamEvent{Type: EventTypeText, Text: responseText(resp)}
		}
	}()
	return events, nil
}

// Complete sends a non-streaming request and returns the whole answer.
func (p *GeminiProvider) Complete(ctx context.Context, req *ChatRequest) (*Completion, error) {
	cs, parts, err := p.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		return nil, err
	}
	return &Completion{Text: responseText(resp)}, nil
}
