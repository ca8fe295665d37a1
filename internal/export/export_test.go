package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/neboloop/runbook/internal/db"
	"github.com/neboloop/runbook/internal/history"
)

func newHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := db.NewSQLite(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return history.New(store)
}

func ask(t *testing.T, h *history.Store, rb db.Runbook, prompt, answer string) {
	t.Helper()
	require.NoError(t, h.SaveInteraction(context.Background(), &db.ChatInteraction{
		RunbookID: rb.ID,
		UserName:  rb.CreatedBy,
		Prompt:    prompt,
		Answer:    answer,
	}))
}

func splitFrontMatter(t *testing.T, data []byte) (FrontMatter, string) {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, []byte("---\n")))
	rest := data[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	require.GreaterOrEqual(t, end, 0)
	var fm FrontMatter
	require.NoError(t, yaml.Unmarshal(rest[:end], &fm))
	return fm, string(rest[end+5:])
}

func TestExportWritesMarkdownAndMarksExported(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()
	rb, err := h.CreateRunbook(ctx, "alice")
	require.NoError(t, err)
	ask(t, h, rb, "How do I rotate TLS certs?\nWe use cert-manager.", "## Rotate certificates\n\nRun `cmctl renew`.")
	ask(t, h, rb, "And verify?", "Check the expiry with openssl.")

	dir := filepath.Join(t.TempDir(), "out")
	exp := New(h, dir)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exp.now = func() time.Time { return fixed }

	path, err := exp.Export(ctx, rb.ID)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName(rb.ID)), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	fm, body := splitFrontMatter(t, data)
	assert.Equal(t, rb.ID, fm.ID)
	assert.Equal(t, rb.Title, fm.Title)
	assert.Equal(t, "alice", fm.Owner)
	assert.Equal(t, "Rotate certificates", fm.Heading)
	assert.Equal(t, 2, fm.Interactions)
	assert.True(t, fixed.Equal(fm.Exported))

	assert.Contains(t, body, "# "+rb.Title)
	assert.Contains(t, body, "## 1. How do I rotate TLS certs?")
	assert.Contains(t, body, "> We use cert-manager.")
	assert.Contains(t, body, "## 2. And verify?")
	assert.Less(t, strings.Index(body, "cmctl renew"), strings.Index(body, "openssl"))

	got, err := h.GetRunbook(ctx, rb.ID)
	require.NoError(t, err)
	assert.Equal(t, history.StatusExported, got.Status)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExportErrors(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()
	exp := New(h, t.TempDir())

	_, err := exp.Export(ctx, 999)
	assert.ErrorIs(t, err, history.ErrRunbookNotFound)

	rb, err := h.CreateRunbook(ctx, "bob")
	require.NoError(t, err)
	_, err = exp.Export(ctx, rb.ID)
	assert.ErrorIs(t, err, ErrEmptyRunbook)
}

func TestExportActiveSkipsEmptyAndExported(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()
	exp := New(h, t.TempDir())

	withQuestions, err := h.CreateRunbook(ctx, "alice")
	require.NoError(t, err)
	ask(t, h, withQuestions, "restart?", "yes")

	_, err = h.CreateRunbook(ctx, "alice")
	require.NoError(t, err)

	paths, err := exp.ExportActive(ctx)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, FileName(withQuestions.ID), filepath.Base(paths[0]))

	paths, err = exp.ExportActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, paths, "already exported runbooks are not rewritten")
}

func TestSchedule(t *testing.T) {
	exp := New(newHistory(t), t.TempDir())
	assert.Error(t, exp.Schedule("not a schedule"))

	require.NoError(t, exp.Schedule("@every 1h"))
	require.NoError(t, exp.Schedule("0 3 * * *"))
	exp.Stop()
	exp.Stop()
}
