package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/runbook/internal/db"
)

func TestGuardDuplicateInRunbook(t *testing.T) {
	store := newTestHistory(t)
	ctx := context.Background()

	rb1, err := store.CreateRunbook(ctx, "alice")
	require.NoError(t, err)
	rb2, err := store.CreateRunbook(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, store.SaveInteraction(ctx, &db.ChatInteraction{Prompt: "deploy?", UserName: "alice", RunbookID: rb1.ID}))

	g := NewGuard(store, GuardConfig{RateLimit: true})

	// repeated checks agree and write nothing
	for i := 0; i < 3; i++ {
		v, err := g.Check(ctx, "alice", "deploy?", rb1.ID)
		require.NoError(t, err)
		assert.False(t, v.Allowed)
		assert.Equal(t, ReasonDuplicate, v.Reason)
		assert.NotEmpty(t, v.Message)
	}
	n, err := store.CountSince(ctx, "alice", time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := g.Allowed(ctx, "alice", "deploy?", rb2.ID)
	require.NoError(t, err)
	assert.True(t, ok, "other runbook is a different scope")

	ok, err = g.Allowed(ctx, "alice", "Deploy?", rb1.ID)
	require.NoError(t, err)
	assert.True(t, ok, "case-sensitive")
}

func TestGuardUserScope(t *testing.T) {
	store := newTestHistory(t)
	ctx := context.Background()

	rb1, err := store.CreateRunbook(ctx, "alice")
	require.NoError(t, err)
	rb2, err := store.CreateRunbook(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, store.SaveInteraction(ctx, &db.ChatInteraction{Prompt: "deploy?", UserName: "alice", RunbookID: rb1.ID}))

	g := NewGuard(store, GuardConfig{Scope: ScopeUser})
	v, err := g.Check(ctx, "alice", "deploy?", rb2.ID)
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonDuplicate, v.Reason)

	ok, err := g.Allowed(ctx, "bob", "deploy?", rb2.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuardRateWindow(t *testing.T) {
	store := newTestHistory(t)
	ctx := context.Background()
	now := time.Now()

	rb, err := store.CreateRunbook(ctx, "alice")
	require.NoError(t, err)

	// outside the window
	require.NoError(t, store.SaveInteraction(ctx, &db.ChatInteraction{
		Prompt: "old", UserName: "alice", RunbookID: rb.ID, CreatedAt: now.Add(-25 * time.Hour).Unix(),
	}))
	for i := 0; i < 2; i++ {
		require.NoError(t, store.SaveInteraction(ctx, &db.ChatInteraction{
			Prompt: fmt.Sprintf("q%d", i), UserName: "alice", RunbookID: rb.ID,
		}))
	}

	g := NewGuard(store, GuardConfig{RateLimit: true, MaxQuestions: 3, Window: 24 * time.Hour})
	g.now = func() time.Time { return now }

	ok, err := g.Allowed(ctx, "alice", "q2", rb.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.SaveInteraction(ctx, &db.ChatInteraction{Prompt: "q2", UserName: "alice", RunbookID: rb.ID}))

	v, err := g.Check(ctx, "alice", "q3", rb.ID)
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonRateLimited, v.Reason)
	assert.Contains(t, v.Message, "24 hours")

	off := NewGuard(store, GuardConfig{RateLimit: false, MaxQuestions: 3})
	ok, err = off.Allowed(ctx, "alice", "q3", rb.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingGuardStore struct{ err error }

func (f failingGuardStore) Exists(context.Context, string, string, int64) (bool, error) {
	return false, f.err
}

func (f failingGuardStore) ExistsForUser(context.Context, string, string) (bool, error) {
	return false, f.err
}

func (f failingGuardStore) CountSince(context.Context, string, time.Time) (int, error) {
	return 0, f.err
}

func TestGuardStoreErrorIsAnError(t *testing.T) {
	boom := errors.New("disk I/O error")
	g := NewGuard(failingGuardStore{err: boom}, GuardConfig{})

	_, err := g.Check(context.Background(), "alice", "p", 1)
	assert.ErrorIs(t, err, boom)
}

func TestNewGuardDefaults(t *testing.T) {
	cfg := NewGuard(nil, GuardConfig{}).Config()
	assert.Equal(t, ScopeRunbook, cfg.Scope)
	assert.Equal(t, 10, cfg.MaxQuestions)
	assert.Equal(t, 24*time.Hour, cfg.Window)
}
