package ai

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func ollamaLine(content string, done bool) string {
	return fmt.Sprintf(`{"model":"llama3","created_at":"2024-01-01T00:00:00Z","message":{"role":"assistant","content":%q},"done":%t}`+"\n", content, done)
}

func ollamaRequest() *ChatRequest {
	maxTokens, topK, truncate := 256, 40, 4096
	penalty := 1.1
	return &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "disk full?"}},
		Options: TranslateOptions(ProviderOllama, GenerationConfig{
			MaxTokens:         &maxTokens,
			TopK:              &topK,
			RepetitionPenalty: &penalty,
			Truncate:          &truncate,
			Stop:              []string{"<|eot_id|>"},
		}),
	}
}

func TestOllamaStreamFragments(t *testing.T) {
	cs := newChatServer(t, "application/x-ndjson",
		ollamaLine("df", false)+ollamaLine("", false)+ollamaLine(" -h", false)+ollamaLine("", true))
	p := NewOllamaProvider(cs.server.URL, "llama3", time.Minute)

	ch, err := p.Stream(context.Background(), ollamaRequest())
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	events := collect(t, ch)

	if got := strings.Join(texts(events), ""); got != "df -h" {
		t.Errorf("answer = %q, want %q", got, "df -h")
	}
	if n := len(texts(events)); n != 4 {
		t.Errorf("got %d text events, want 4 including empty deltas", n)
	}
	if last := events[len(events)-1]; last.Type != EventTypeDone {
		t.Errorf("last event = %s, want done", last.Type)
	}

	path, body := cs.request()
	if path != "/api/chat" {
		t.Errorf("path = %q", path)
	}
	if body["stream"] != true {
		t.Errorf("stream = %v, want true", body["stream"])
	}
	opts, _ := body["options"].(map[string]any)
	if opts == nil {
		t.Fatalf("options missing from %v", body)
	}
	for key, want := range map[string]any{
		"num_predict":    256.0,
		"top_k":          40.0,
		"repeat_penalty": 1.1,
		"num_ctx":        4096.0,
	} {
		if opts[key] != want {
			t.Errorf("options[%s] = %v, want %v", key, opts[key], want)
		}
	}
	if _, ok := opts["max_tokens"]; ok {
		t.Errorf("max_tokens must be sent as num_predict")
	}
	stop, _ := opts["stop"].([]any)
	if len(stop) != 1 || stop[0] != "<|eot_id|>" {
		t.Errorf("stop = %v", opts["stop"])
	}
}

func TestOllamaStreamErrorMidway(t *testing.T) {
	cs := newChatServer(t, "application/x-ndjson",
		ollamaLine("par", false)+`{"error":"model runner crashed"}`+"\n"+ollamaLine("never", false))
	p := NewOllamaProvider(cs.server.URL, "llama3", time.Minute)

	ch, err := p.Stream(context.Background(), ollamaRequest())
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
	if !strings.Contains(last.Error.Error(), "model runner crashed") {
		t.Errorf("error = %v", last.Error)
	}
}

func TestOllamaComplete(t *testing.T) {
	cs := newChatServer(t, "application/json", ollamaLine("free up /var/log", true))
	p := NewOllamaProvider(cs.server.URL, "llama3", time.Minute)

	c, err := p.Complete(context.Background(), ollamaRequest())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.Text != "free up /var/log" {
		t.Errorf("text = %q", c.Text)
	}
	_, body := cs.request()
	if body["stream"] != false {
		t.Errorf("stream = %v, want false", body["stream"])
	}
}
