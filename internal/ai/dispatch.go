package ai

import (
	"context"
	"errors"
)

// Response holds exactly one of a stream or a whole completion.
type Response struct {
	Stream  <-chan StreamEvent
	Message *Completion
}

// Dispatch sends msgs to p. With stream set the answer arrives as events on
// Response.Stream; otherwise Response.Message carries the full text. Any
// failure to obtain a response is a *CompletionSessionError. Nothing is retried.
func Dispatch(ctx context.Context, p Provider, model string, msgs []Message, stream bool, gen GenerationConfig) (*Response, error) {
	if p == nil {
		return nil, &CompletionSessionError{Provider: "none", Err: ErrNoResponse}
	}

	req := &ChatRequest{
		Model:    model,
		Messages: msgs,
		Options:  TranslateOptions(p.ID(), gen),
	}

	if stream {
		ch, err := p.Stream(ctx, req)
		if err != nil {
			return nil, &CompletionSessionError{Provider: p.ID(), Err: err}
		}
		if ch == nil {
			return nil, &CompletionSessionError{Provider: p.ID(), Err: ErrNoResponse}
		}
		out, err := awaitFirst(ctx, ch)
		if err != nil {
			return nil, &CompletionSessionError{Provider: p.ID(), Err: err}
		}
		return &Response{Stream: out}, nil
	}

	c, err := p.Complete(ctx, req)
	if err != nil {
		return nil, &CompletionSessionError{Provider: p.ID(), Err: err}
	}
	if c == nil {
		return nil, &CompletionSessionError{Provider: p.ID(), Err: ErrNoResponse}
	}
	return &Response{Message: c}, nil
}

// awaitFirst waits for the first event of ch. Providers connect lazily, so a
// transport failure shows up as an error event before any text; that is a
// failure to start, not a broken stream. The returned channel replays the
// first event and forwards the rest.
func awaitFirst(ctx context.Context, ch <-chan StreamEvent) (<-chan StreamEvent, error) {
	var first StreamEvent
	select {
	case <-ctx.Done():
		go drain(ch)
		return nil, ctx.Err()
	case ev, ok := <-ch:
		if !ok {
			return nil, ErrNoResponse
		}
		first = ev
	}

	if first.Type == EventTypeError {
		go drain(ch)
		if first.Error == nil {
			return nil, errors.New("stream error")
		}
		return nil, first.Error
	}

	out := make(chan StreamEvent, cap(ch)+1)
	out <- first
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				go drain(ch)
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					go drain(ch)
					return
				}
			}
		}
	}()
	return out, nil
}

func drain(ch <-chan StreamEvent) {
	for range ch {
	}
}
