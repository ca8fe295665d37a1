package svc

import (
	"fmt"
	"sync"

	"github.com/neboloop/runbook/internal/ai"
	"github.com/neboloop/runbook/internal/chat"
	"github.com/neboloop/runbook/internal/config"
	"github.com/neboloop/runbook/internal/db"
	"github.com/neboloop/runbook/internal/documents"
	"github.com/neboloop/runbook/internal/export"
	"github.com/neboloop/runbook/internal/history"
	"github.com/neboloop/runbook/internal/keyring"
	"github.com/neboloop/runbook/internal/logging"
)

type ServiceContext struct {
	Config  config.Config
	Version string

	DB        *db.Store
	History   *history.Store
	Chat      *chat.Manager
	Documents *documents.Library
	Exporter  *export.Exporter

	mu       sync.Mutex
	schedule string
}

// Option configures a ServiceContext.
type Option func(*options)

type options struct {
	version     string
	newProvider chat.ProviderFactory
}

// WithVersion sets the build version reported by /health.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// WithProviderFactory overrides how LLM providers are built.
func WithProviderFactory(f chat.ProviderFactory) Option {
	return func(o *options) { o.newProvider = f }
}

// NewServiceContext opens the database and wires every service.
func NewServiceContext(c config.Config, opts ...Option) (*ServiceContext, error) {
	o := options{version: "dev", newProvider: ai.NewProvider}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := db.NewSQLite(c.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	svcCtx := &ServiceContext{
		Config:  c,
		Version: o.version,
		DB:      store,
		History: history.New(store),
	}

	guardCfg, err := chat.GuardConfigFromConfig(c)
	if err != nil {
		store.Close()
		return nil, err
	}
	guard := chat.NewGuard(svcCtx.History, guardCfg)

	mgrOpts := []chat.ManagerOption{chat.WithProviderFactory(o.newProvider)}
	var mgr *chat.Manager
	lib, err := documents.New(store, documents.ConfigFrom(c),
		documents.WithParser(func() chat.Settings { return mgr.Settings() }, o.newProvider))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("document library: %w", err)
	}
	mgrOpts = append(mgrOpts, chat.WithDocuments(lib))
	mgr = chat.NewManager(svcCtx.History, guard, Settings(c), mgrOpts...)

	svcCtx.Chat = mgr
	svcCtx.Documents = lib
	svcCtx.Exporter = export.New(svcCtx.History, c.Export.Dir)

	if c.Export.Schedule != "" {
		if err := svcCtx.Exporter.Schedule(c.Export.Schedule); err != nil {
			store.Close()
			return nil, err
		}
		svcCtx.schedule = c.Export.Schedule
	}
	return svcCtx, nil
}

// Settings derives chat settings from c, taking the API key from the OS
// keychain when the config has none.
func Settings(c config.Config) chat.Settings {
	s := chat.SettingsFromConfig(c)
	if s.Provider.Provider != ai.ProviderOllama {
		s.Provider.APIKey = keyring.Resolve(s.Provider.Provider, s.Provider.APIKey)
	}
	return s
}

// Reload applies a changed configuration. Only the LLM settings and the
// export schedule take effect at runtime; other sections need a restart.
func (s *ServiceContext) Reload(c config.Config) {
	s.Chat.Reconfigure(Settings(c))

	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Export.Schedule == s.schedule {
		return
	}
	if c.Export.Schedule == "" {
		s.Exporter.Stop()
	} else if err := s.Exporter.Schedule(c.Export.Schedule); err != nil {
		logging.Warnf("export schedule not changed: %v", err)
		return
	}
	s.schedule = c.Export.Schedule
}

// Close stops background work and closes the database.
func (s *ServiceContext) Close() error {
	s.Exporter.Stop()
	return s.DB.Close()
}
