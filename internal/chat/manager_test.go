package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/runbook/internal/ai"
)

func TestManagerSessionPerUser(t *testing.T) {
	store := newTestHistory(t)
	m := NewManager(store, NewGuard(store, GuardConfig{}), Settings{SystemPrompt: "sys"})
	ctx := context.Background()

	alice, err := m.Session(ctx, "alice")
	require.NoError(t, err)
	again, err := m.Session(ctx, "alice")
	require.NoError(t, err)
	assert.Same(t, alice, again)

	bob, err := m.Session(ctx, "bob")
	require.NoError(t, err)
	assert.NotSame(t, alice, bob)

	// loading a user with no runbooks creates one
	assert.NotZero(t, alice.Snapshot().RunbookID)
	assert.NotEqual(t, alice.Snapshot().RunbookID, bob.Snapshot().RunbookID)
}

func TestManagerReconfigureReachesSessions(t *testing.T) {
	store := newTestHistory(t)
	var built []ai.ProviderConfig
	factory := func(cfg ai.ProviderConfig) (ai.Provider, error) {
		built = append(built, cfg)
		return &scriptedProvider{completion: &ai.Completion{Text: "ok"}}, nil
	}
	m := NewManager(store, NewGuard(store, GuardConfig{}),
		Settings{Provider: ai.ProviderConfig{Provider: "scripted", Model: "m1"}, SystemPrompt: "sys"},
		WithProviderFactory(factory))
	ctx := context.Background()

	s, err := m.Session(ctx, "alice")
	require.NoError(t, err)
	s.SetPrompt("first")
	_, err = s.SubmitResult(ctx)
	require.NoError(t, err)
	require.Len(t, built, 1)
	assert.Equal(t, "m1", built[0].Model)

	m.Reconfigure(Settings{Provider: ai.ProviderConfig{Provider: "scripted", Model: "m2"}, SystemPrompt: "sys"})
	assert.Equal(t, "m2", m.Settings().Provider.Model)

	s.SetPrompt("second")
	_, err = s.SubmitResult(ctx)
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, "m2", built[1].Model)

	m.InvalidateProviders()
	s.SetPrompt("third")
	_, err = s.SubmitResult(ctx)
	require.NoError(t, err)
	assert.Len(t, built, 3)
}
