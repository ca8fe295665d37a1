package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/neboloop/runbook/internal/ai"
	"github.com/neboloop/runbook/internal/db"
	"github.com/neboloop/runbook/internal/history"
	"github.com/neboloop/runbook/internal/logging"
)

// HistoryStore is what a Session needs from the history store.
type HistoryStore interface {
	GuardStore
	CreateRunbook(ctx context.Context, owner string) (db.Runbook, error)
	GetRunbook(ctx context.Context, id int64) (db.Runbook, error)
	ListRunbooks(ctx context.Context, owner string) ([]db.Runbook, error)
	ListInteractions(ctx context.Context, runbookID int64) ([]db.ChatInteraction, error)
	SaveInteraction(ctx context.Context, ci *db.ChatInteraction) error
}

// DocumentSource supplies reference documents for prompt assembly.
type DocumentSource interface {
	References(ctx context.Context) ([]ReferenceDocument, error)
}

// ProviderFactory builds a provider from its configuration.
type ProviderFactory func(ai.ProviderConfig) (ai.Provider, error)

// Settings is the LLM side of a session's configuration.
type Settings struct {
	Provider      ai.ProviderConfig
	Stream        bool
	SystemPrompt  string
	Generation    ai.GenerationConfig
	AssistantName string
	UseDocuments  bool
}

// Session is one user's chat state: the active runbook, its interactions, the
// prompt being edited and at most one submission in flight.
type Session struct {
	username    string
	store       HistoryStore
	guard       *Guard
	docs        DocumentSource
	newProvider ProviderFactory

	mu           sync.Mutex
	settings     Settings
	provider     ai.Provider
	prompt       string
	runbookID    int64
	runbooks     []db.Runbook
	interactions []db.ChatInteraction
	inFlight     bool
	retired      []ai.Provider
	loading      bool
	phase        Phase
	notification *Notification

	lmu       sync.Mutex
	listeners map[int]func(Event)
	nextID    int
}

// NewSession creates a session for username. Call Load before use.
func NewSession(username string, store HistoryStore, guard *Guard, settings Settings) *Session {
	return &Session{
		username:    username,
		store:       store,
		guard:       guard,
		newProvider: ai.NewProvider,
		settings:    settings,
		listeners:   make(map[int]func(Event)),
	}
}

// SetDocuments enables reference documents from src.
func (s *Session) SetDocuments(src DocumentSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = src
}

// SetProviderFactory replaces the function used to build providers.
func (s *Session) SetProviderFactory(f ProviderFactory) {
	s.mu.Lock()
	s.newProvider = f
	old := s.dropProviderLocked()
	s.mu.Unlock()
	release(old)
}

// Username returns the session owner.
func (s *Session) Username() string { return s.username }

// Subscribe registers fn for session events. Callbacks run on the goroutine
// that produced the event, outside the session lock.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Session) emit(ev Event) {
	s.lmu.Lock()
	fns := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Session) notify(level, msg string) {
	n := &Notification{Level: level, Message: msg}
	s.mu.Lock()
	s.notification = n
	s.mu.Unlock()
	s.emit(Event{Type: EventNotification, Notification: n})
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Username:     s.username,
		Prompt:       s.prompt,
		RunbookID:    s.runbookID,
		Runbooks:     append([]db.Runbook{}, s.runbooks...),
		Interactions: append([]db.ChatInteraction{}, s.interactions...),
		Loading:      s.loading,
		Phase:        s.phase,
		Notification: s.notification,
	}
}

// SetPrompt replaces the prompt text.
func (s *Session) SetPrompt(prompt string) {
	s.mu.Lock()
	s.prompt = prompt
	s.mu.Unlock()
	s.emit(Event{Type: EventPrompt, Text: prompt})
}

// Reconfigure swaps the LLM settings. The provider is rebuilt on next use.
func (s *Session) Reconfigure(settings Settings) {
	s.mu.Lock()
	s.settings = settings
	old := s.dropProviderLocked()
	s.mu.Unlock()
	release(old)
}

// InvalidateProvider drops the cached provider.
func (s *Session) InvalidateProvider() {
	s.mu.Lock()
	old := s.dropProviderLocked()
	s.mu.Unlock()
	release(old)
}

// dropProviderLocked forgets the cached provider and returns it for release.
// While a submission is running the provider may still be streaming, so it is
// parked until finish instead. s.mu must be held.
func (s *Session) dropProviderLocked() ai.Provider {
	old := s.provider
	s.provider = nil
	if old == nil {
		return nil
	}
	if s.inFlight {
		s.retired = append(s.retired, old)
		return nil
	}
	return old
}

func release(providers ...ai.Provider) {
	for _, p := range providers {
		if p == nil {
			continue
		}
		if err := ai.Release(p); err != nil {
			logging.Warnf("closing %s provider: %v", p.ID(), err)
		}
	}
}

// Load activates the user's newest runbook, creating one if the user has none.
func (s *Session) Load(ctx context.Context) error {
	runbooks, err := s.store.ListRunbooks(ctx, s.username)
	if err != nil {
		return fmt.Errorf("list runbooks: %w", err)
	}
	if len(runbooks) == 0 {
		_, err := s.NewRunbook(ctx)
		return err
	}
	return s.activate(ctx, runbooks[0].ID, runbooks)
}

// NewRunbook creates a runbook and makes it active.
func (s *Session) NewRunbook(ctx context.Context) (db.Runbook, error) {
	if s.busy() {
		return db.Runbook{}, ErrSubmissionInFlight
	}
	rb, err := s.store.CreateRunbook(ctx, s.username)
	if err != nil {
		return db.Runbook{}, err
	}
	runbooks, err := s.store.ListRunbooks(ctx, s.username)
	if err != nil {
		return db.Runbook{}, fmt.Errorf("list runbooks: %w", err)
	}
	if err := s.activate(ctx, rb.ID, runbooks); err != nil {
		return db.Runbook{}, err
	}
	return rb, nil
}

// SwitchRunbook makes the runbook with id active and loads its interactions.
func (s *Session) SwitchRunbook(ctx context.Context, id int64) error {
	if s.busy() {
		return ErrSubmissionInFlight
	}
	rb, err := s.store.GetRunbook(ctx, id)
	if err != nil {
		return err
	}
	if rb.CreatedBy != s.username {
		return history.ErrRunbookNotFound
	}
	runbooks, err := s.store.ListRunbooks(ctx, s.username)
	if err != nil {
		return fmt.Errorf("list runbooks: %w", err)
	}
	return s.activate(ctx, id, runbooks)
}

func (s *Session) activate(ctx context.Context, id int64, runbooks []db.Runbook) error {
	interactions, err := s.store.ListInteractions(ctx, id)
	if err != nil {
		return fmt.Errorf("list interactions: %w", err)
	}
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrSubmissionInFlight
	}
	s.runbookID = id
	s.runbooks = runbooks
	s.interactions = interactions
	s.mu.Unlock()
	s.emit(Event{Type: EventRunbookChanged, RunbookID: id})
	return nil
}

func (s *Session) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *Session) resolveProvider() (ai.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider != nil {
		return s.provider, nil
	}
	p, err := s.newProvider(s.settings.Provider)
	if err != nil {
		return nil, err
	}
	s.provider = p
	return p, nil
}

// Submit sends the current prompt. See SubmitResult.
func (s *Session) Submit(ctx context.Context) error {
	_, err := s.SubmitResult(ctx)
	return err
}

// SubmitResult sends the current prompt and blocks until the answer has been
// streamed and stored. An empty prompt is a no-op. A guard rejection returns a
// Verdict that is not allowed and a nil error.
func (s *Session) SubmitResult(ctx context.Context) (Result, error) {
	s.mu.Lock()
	prompt := s.prompt
	if prompt == "" {
		s.mu.Unlock()
		return Result{}, nil
	}
	if s.inFlight {
		s.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}
	s.inFlight = true
	s.phase = PhaseValidating
	runbookID := s.runbookID
	settings := s.settings
	docs := s.docs
	historyCopy := append([]db.ChatInteraction{}, s.interactions...)
	s.mu.Unlock()

	defer s.finish()

	log := logging.WithContext(logging.ContextWith(ctx, "user", s.username, "runbook", runbookID))

	if s.username == "" {
		err := &ValidationError{Field: "username", Message: "username is required"}
		s.notify(LevelError, err.Error())
		return Result{}, err
	}
	if runbookID == 0 {
		err := &ValidationError{Field: "runbook", Message: "no active runbook"}
		s.notify(LevelError, err.Error())
		return Result{}, err
	}

	s.setPhase(PhaseGuarding)
	verdict, err := s.guard.Check(ctx, s.username, prompt, runbookID)
	if err != nil {
		s.notify(LevelError, "Could not check question history.")
		return Result{}, err
	}
	if !verdict.Allowed {
		log.Infof("submission rejected: %s", verdict.Reason)
		s.notify(LevelWarning, verdict.Message)
		return Result{Verdict: verdict}, nil
	}

	s.mu.Lock()
	s.loading = true
	s.phase = PhaseAwaitingCompletion
	s.mu.Unlock()
	s.emit(Event{Type: EventLoading, Loading: true})

	var refs []ReferenceDocument
	if settings.UseDocuments && docs != nil {
		if refs, err = docs.References(ctx); err != nil {
			log.Warnf("reference documents unavailable: %v", err)
			refs = nil
		}
	}
	msgs := AssembleWithDocuments(historyCopy, prompt, settings.SystemPrompt, refs)

	provider, err := s.resolveProvider()
	if err != nil {
		s.clearLoading()
		s.notify(LevelError, err.Error())
		return Result{Verdict: verdict}, err
	}

	resp, err := ai.Dispatch(ctx, provider, "", msgs, settings.Stream, settings.Generation)
	if err != nil {
		log.Errorf("dispatch failed: %v", err)
		s.clearLoading()
		s.notify(LevelError, err.Error())
		return Result{Verdict: verdict}, err
	}

	s.mu.Lock()
	s.loading = false
	s.interactions = append(s.interactions, db.ChatInteraction{
		Prompt:             prompt,
		UserName:           s.username,
		AssistantName:      settings.AssistantName,
		UserAvatarUrl:      history.DefaultUserAvatarURL,
		AssistantAvatarUrl: history.DefaultAssistantAvatarURL,
		RunbookID:          runbookID,
	})
	idx := len(s.interactions) - 1
	pending := s.interactions[idx]
	s.prompt = ""
	s.phase = PhaseStreaming
	s.mu.Unlock()
	s.emit(Event{Type: EventLoading, Loading: false})
	s.emit(Event{Type: EventInteractionStarted, RunbookID: runbookID, Interaction: &pending})

	streamErr := s.consume(ctx, resp, provider.ID(), idx)
	if streamErr != nil {
		log.Warnf("stream ended early, keeping partial answer: %v", streamErr)
	}

	s.setPhase(PhasePersisting)
	s.mu.Lock()
	final := s.interactions[idx]
	s.mu.Unlock()

	// The answer is kept even when the caller has gone away.
	if err := s.store.SaveInteraction(context.WithoutCancel(ctx), &final); err != nil {
		log.Errorf("persist interaction: %v", err)
		perr := &PersistenceError{Err: err}
		s.notify(LevelError, perr.Error())
		return Result{Verdict: verdict, Interaction: &final}, perr
	}

	s.mu.Lock()
	s.interactions[idx] = final
	s.mu.Unlock()
	s.emit(Event{Type: EventPersisted, RunbookID: runbookID, Interaction: &final})

	if streamErr != nil {
		s.notify(LevelError, streamErr.Error())
		return Result{Verdict: verdict, Interaction: &final}, streamErr
	}
	return Result{Verdict: verdict, Interaction: &final}, nil
}

// consume applies the response to the pending interaction at idx.
func (s *Session) consume(ctx context.Context, resp *ai.Response, providerID string, idx int) error {
	if resp.Stream == nil {
		text := ""
		if resp.Message != nil {
			text = resp.Message.Text
		}
		s.mu.Lock()
		s.interactions[idx].Answer = text
		s.mu.Unlock()
		s.emit(Event{Type: EventFragment, Text: text})
		s.emit(Event{Type: EventScroll})
		return nil
	}

	stop := func(err error) error {
		// let the producer finish
		go func() {
			for range resp.Stream {
			}
		}()
		return &ai.StreamTerminationError{Provider: providerID, Err: err}
	}

	for {
		select {
		case <-ctx.Done():
			return stop(ctx.Err())
		case ev, ok := <-resp.Stream:
			if !ok {
				if err := ctx.Err(); err != nil {
					return stop(err)
				}
				return nil
			}
			switch ev.Type {
			case ai.EventTypeText:
				s.mu.Lock()
				s.interactions[idx].Answer += ev.Text
				s.mu.Unlock()
				s.emit(Event{Type: EventFragment, Text: ev.Text})
				s.emit(Event{Type: EventScroll})
			case ai.EventTypeError:
				err := ev.Error
				if err == nil {
					err = errors.New("stream error")
				}
				return stop(err)
			case ai.EventTypeDone:
				return nil
			}
		}
	}
}

func (s *Session) clearLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.emit(Event{Type: EventLoading, Loading: false})
}

func (s *Session) finish() {
	s.mu.Lock()
	wasLoading := s.loading
	s.loading = false
	s.inFlight = false
	s.phase = PhaseIdle
	retired := s.retired
	s.retired = nil
	s.mu.Unlock()
	release(retired...)
	if wasLoading {
		s.emit(Event{Type: EventLoading, Loading: false})
	}
}
