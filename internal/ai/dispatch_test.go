package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	id         string
	stream     <-chan StreamEvent
	completion *Completion
	err        error
	lastReq    *ChatRequest
}

func (f *fakeProvider) ID() string    { return f.id }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Stream(_ context.Context, req *ChatRequest) (<-chan StreamEvent, error) {
	f.lastReq = req
	return f.stream, f.err
}

func (f *fakeProvider) Complete(_ context.Context, req *ChatRequest) (*Completion, error) {
	f.lastReq = req
	return f.completion, f.err
}

func TestDispatchStream(t *testing.T) {
	ch := make(chan StreamEvent, 3)
	ch <- StreamEvent{Type: EventTypeText, Text: "Hel"}
	ch <- StreamEvent{Type: EventTypeText, Text: "lo"}
	ch <- StreamEvent{Type: EventTypeDone}
	close(ch)

	p := &fakeProvider{id: ProviderOllama, stream: ch}
	msgs := []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}}
	temp := 0.3

	resp, err := Dispatch(context.Background(), p, "m1", msgs, true, GenerationConfig{Temperature: &temp})
	require.NoError(t, err)
	require.NotNil(t, resp.Stream)
	assert.Nil(t, resp.Message)

	assert.Equal(t, "m1", p.lastReq.Model)
	assert.Equal(t, msgs, p.lastReq.Messages)
	assert.Equal(t, 0.3, p.lastReq.Options["temperature"])

	var text string
	for ev := range resp.Stream {
		text += ev.Text
	}
	assert.Equal(t, "Hello", text)
}

func TestDispatchBatch(t *testing.T) {
	p := &fakeProvider{id: ProviderOpenAI, completion: &Completion{Text: "whole answer"}}

	resp, err := Dispatch(context.Background(), p, "", nil, false, GenerationConfig{})
	require.NoError(t, err)
	require.NotNil(t, resp.Message)
	assert.Equal(t, "whole answer", resp.Message.Text)
	assert.Nil(t, resp.Stream)
}

func TestDispatchNilHandle(t *testing.T) {
	var cse *CompletionSessionError

	_, err := Dispatch(context.Background(), &fakeProvider{id: ProviderOllama}, "", nil, true, GenerationConfig{})
	require.True(t, errors.As(err, &cse))
	assert.ErrorIs(t, err, ErrNoResponse)

	_, err = Dispatch(context.Background(), &fakeProvider{id: ProviderOllama}, "", nil, false, GenerationConfig{})
	require.True(t, errors.As(err, &cse))
	assert.ErrorIs(t, err, ErrNoResponse)

	_, err = Dispatch(context.Background(), nil, "", nil, true, GenerationConfig{})
	assert.True(t, errors.As(err, &cse))
}

func TestDispatchProviderError(t *testing.T) {
	boom := errors.New("connection refused")
	p := &fakeProvider{id: ProviderOllama, err: boom}

	_, err := Dispatch(context.Background(), p, "", nil, true, GenerationConfig{})
	var cse *CompletionSessionError
	require.True(t, errors.As(err, &cse))
	assert.Equal(t, ProviderOllama, cse.Provider)
	assert.ErrorIs(t, err, boom)
}

func TestDispatchStreamFailingToStart(t *testing.T) {
	refused := errors.New("401 Unauthorized")
	ch := make(chan StreamEvent, 1)
	ch <- StreamEvent{Type: EventTypeError, Error: refused}
	close(ch)

	resp, err := Dispatch(context.Background(), &fakeProvider{id: ProviderOpenAI, stream: ch}, "", nil, true, GenerationConfig{})
	assert.Nil(t, resp)
	var cse *CompletionSessionError
	require.True(t, errors.As(err, &cse))
	assert.Equal(t, ProviderOpenAI, cse.Provider)
	assert.ErrorIs(t, err, refused)

	empty := make(chan StreamEvent)
	close(empty)
	_, err = Dispatch(context.Background(), &fakeProvider{id: ProviderOllama, stream: empty}, "", nil, true, GenerationConfig{})
	require.True(t, errors.As(err, &cse))
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestDispatchStreamReplaysFirstEvent(t *testing.T) {
	ch := make(chan StreamEvent)
	go func() {
		ch <- StreamEvent{Type: EventTypeText, Text: ""}
		ch <- StreamEvent{Type: EventTypeText, Text: "a"}
		ch <- StreamEvent{Type: EventTypeError, Error: errors.New("reset")}
		close(ch)
	}()

	resp, err := Dispatch(context.Background(), &fakeProvider{id: ProviderOllama, stream: ch}, "", nil, true, GenerationConfig{})
	require.NoError(t, err)

	var got []StreamEvent
	for ev := range resp.Stream {
		got = append(got, ev)
	}
	require.Len(t, got, 3)
	assert.Equal(t, EventTypeText, got[0].Type)
	assert.Equal(t, "", got[0].Text)
	assert.Equal(t, "a", got[1].Text)
	assert.Equal(t, EventTypeError, got[2].Type, "errors after the first event stay in the stream")
}

func TestDispatchStreamCancelledBeforeFirstEvent(t *testing.T) {
	ch := make(chan StreamEvent)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dispatch(ctx, &fakeProvider{id: ProviderOllama, stream: ch}, "", nil, true, GenerationConfig{})
	var cse *CompletionSessionError
	require.True(t, errors.As(err, &cse))
	assert.ErrorIs(t, err, context.Canceled)
	close(ch)
}
