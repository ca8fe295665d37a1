package chat

import (
	"context"
	"sync"

	"github.com/neboloop/runbook/internal/logging"
)

// Manager owns one Session per username and the configuration they share.
type Manager struct {
	store       HistoryStore
	guard       *Guard
	docs        DocumentSource
	newProvider ProviderFactory

	mu       sync.Mutex
	settings Settings
	sessions map[string]*Session
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDocuments makes reference documents available to sessions.
func WithDocuments(src DocumentSource) ManagerOption {
	return func(m *Manager) { m.docs = src }
}

// WithProviderFactory overrides how sessions build providers.
func WithProviderFactory(f ProviderFactory) ManagerOption {
	return func(m *Manager) { m.newProvider = f }
}

// NewManager creates a session manager.
func NewManager(store HistoryStore, guard *Guard, settings Settings, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		guard:    guard,
		settings: settings,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the loaded session for username, creating it on first use.
func (m *Manager) Session(ctx context.Context, username string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[username]; ok {
		m.mu.Unlock()
		return s, nil
	}
	s := NewSession(username, m.store, m.guard, m.settings)
	if m.docs != nil {
		s.SetDocuments(m.docs)
	}
	if m.newProvider != nil {
		s.SetProviderFactory(m.newProvider)
	}
	m.mu.Unlock()

	if err := s.Load(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have loaded it meanwhile
	if existing, ok := m.sessions[username]; ok {
		return existing, nil
	}
	m.sessions[username] = s
	return s, nil
}

// Settings returns the current LLM settings.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Reconfigure applies new LLM settings to every session. Cached providers are
// dropped and rebuilt on next use.
func (m *Manager) Reconfigure(settings Settings) {
	m.mu.Lock()
	m.settings = settings
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Reconfigure(settings)
	}
	logging.Infof("LLM configuration updated: provider=%s model=%s sessions=%d",
		settings.Provider.Provider, settings.Provider.Model, len(sessions))
}

// InvalidateProviders drops every session's cached provider.
func (m *Manager) InvalidateProviders() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.InvalidateProvider()
	}
}
