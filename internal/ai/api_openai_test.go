package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// chatServer records the last request body and answers with a canned payload.
type chatServer struct {
	server      *httptest.Server
	contentType string
	reply       string

	mu   sync.Mutex
	path string
	body map[string]any
}

func newChatServer(t *testing.T, contentType, reply string) *chatServer {
	t.Helper()
	cs := &chatServer{contentType: contentType, reply: reply}
	cs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cs.mu.Lock()
		cs.path = r.URL.Path
		cs.body = body
		cs.mu.Unlock()

		w.Header().Set("Content-Type", cs.contentType)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, cs.reply)
	}))
	t.Cleanup(cs.server.Close)
	return cs
}

func (cs *chatServer) request() (string, map[string]any) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.path, cs.body
}

func sse(chunks ...string) string {
	var sb strings.Builder
	for _, c := range chunks {
		fmt.Fprintf(&sb, "data: %s\n\n", c)
	}
	return sb.String()
}

func openAIChunk(content string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-test","choices":[{"index":0,"delta":{"content":%q}}]}`, content)
}

func collect(t *testing.T, ch <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("stream did not close, got %d events", len(events))
		}
	}
}

func texts(events []StreamEvent) []string {
	var out []string
	for _, ev := range events {
		if ev.Type == EventTypeText {
			out = append(out, ev.Text)
		}
	}
	return out
}

func wireRequest() *ChatRequest {
	maxTokens, topK, truncate := 512, 40, 1000
	penalty, temp := 1.0, 0.7
	return &ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "restart nginx?"},
		},
		Options: TranslateOptions(ProviderOpenAI, GenerationConfig{
			MaxTokens:         &maxTokens,
			Temperature:       &temp,
			TopK:              &topK,
			RepetitionPenalty: &penalty,
			Truncate:          &truncate,
			Stop:              []string{"<|eot_id|>"},
		}),
	}
}

func TestOpenAIStreamFragments(t *testing.T) {
	cs := newChatServer(t, "text/event-stream", sse(
		openAIChunk("Hel"),
		openAIChunk(""),
		openAIChunk("lo"),
		"[DONE]",
	))
	p := NewOpenAIProvider(ProviderOpenAI, "sk-test", cs.server.URL+"/v1/", "gpt-test")

	ch, err := p.Stream(context.Background(), wireRequest())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	events := collect(t, ch)

	got := texts(events)
	want := []string{"Hel", "", "lo"}
	if strings.Join(got, "|") != strings.Join(want, "|") || len(got) != len(want) {
		t.Fatalf("fragments = %q, want %q", got, want)
	}
	if last := events[len(events)-1]; last.Type != EventTypeDone {
		t.Errorf("last event = %s, want done", last.Type)
	}

	path, body := cs.request()
	if path != "/v1/chat/completions" {
		t.Errorf("path = %q", path)
	}
	if body["stream"] != true {
		t.Errorf("stream = %v, want true", body["stream"])
	}
	if body["model"] != "gpt-test" {
		t.Errorf("model = %v", body["model"])
	}
	if body["frequency_penalty"] != 1.0 {
		t.Errorf("frequency_penalty = %v, want 1", body["frequency_penalty"])
	}
	if body["max_completion_tokens"] != 1000.0 {
		t.Errorf("max_completion_tokens = %v, want 1000", body["max_completion_tokens"])
	}
	if body["max_tokens"] != 512.0 {
		t.Errorf("max_tokens = %v, want 512", body["max_tokens"])
	}
	if _, ok := body["top_k"]; ok {
		t.Errorf("top_k must not be sent to OpenAI")
	}
	stop, _ := body["stop"].([]any)
	if len(stop) != 1 || stop[0] != "<|eot_id|>" {
		t.Errorf("stop = %v", body["stop"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", body["messages"])
	}
	if role := msgs[0].(map[string]any)["role"]; role != RoleSystem {
		t.Errorf("first role = %v", role)
	}
}

func TestOpenAIStreamErrorMidway(t *testing.T) {
	cs := newChatServer(t, "text/event-stream", sse(
		openAIChunk("par"),
		`{"error":{"message":"upstream overloaded","type":"server_error"}}`,
		openAIChunk("never"),
	))
	p := NewOpenAIProvider(ProviderOpenAI, "sk-test", cs.server.URL+"/v1/", "gpt-test")

	ch, err := p.Stream(context.Background(), wireRequest())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	events := collect(t, ch)

	if got := texts(events); len(got) != 1 || got[0] != "par" {
		t.Fatalf("fragments = %q, want [par]", got)
	}
	last := events[len(events)-1]
	if last.Type != EventTypeError || last.Error == nil {
		t.Fatalf("last event = %+v, want error", last)
	}
	if !strings.Contains(last.Error.Error(), "upstream overloaded") {
		t.Errorf("error = %v", last.Error)
	}
}

func TestOpenAICompleteSendsStop(t *testing.T) {
	cs := newChatServer(t, "application/json",
		`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-test","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"systemctl restart nginx"}}]}`)
	p := NewOpenAIProvider(ProviderTogether, "tg-test", cs.server.URL+"/v1/", "llama")

	c, err := p.Complete(context.Background(), wireRequest())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Text != "systemctl restart nginx" {
		t.Errorf("text = %q", c.Text)
	}

	_, body := cs.request()
	if _, ok := body["stream"]; ok && body["stream"] != false {
		t.Errorf("batch request asked for a stream: %v", body["stream"])
	}
	stop, _ := body["stop"].([]any)
	if len(stop) != 1 || stop[0] != "<|eot_id|>" {
		t.Errorf("stop = %v", body["stop"])
	}
	if p.ID() != ProviderTogether {
		t.Errorf("ID = %q", p.ID())
	}
}
