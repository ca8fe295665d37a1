package documents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/runbook/internal/ai"
	"github.com/neboloop/runbook/internal/chat"
	"github.com/neboloop/runbook/internal/db"
)

const samplePage = `<!doctype html>
<html><head><title>Postgres failover</title><style>.x{}</style></head>
<body>
<nav>Home | Docs</nav>
<h1>Failover</h1>
<p>Promote the   replica.</p>
<div style="display:none">secret banner</div>
<script>track()</script>
<ul><li>Stop writes</li><li>Promote</li></ul>
</body></html>`

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	hits := new(int)
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*hits++
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	})
	mux.HandleFunc("/notes.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("restart the worker pool"))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("a", 4096)))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hits
}

func newTableLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()
	store, err := db.NewSQLite(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	lib, err := New(store, Config{Storage: StorageTable, FetchTimeout: 5 * time.Second, MaxBytes: 1024}, opts...)
	require.NoError(t, err)
	return lib
}

func newFileLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()
	lib, err := New(nil, Config{Storage: StorageFile, Dir: t.TempDir(), FetchTimeout: 5 * time.Second, MaxBytes: 1024}, opts...)
	require.NoError(t, err)
	return lib
}

func TestValidURL(t *testing.T) {
	assert.True(t, ValidURL("https://example.com/docs"))
	assert.True(t, ValidURL("http://localhost:8080"))
	assert.False(t, ValidURL("ftp://example.com"))
	assert.False(t, ValidURL("example.com"))
	assert.False(t, ValidURL("https://"))
	assert.False(t, ValidURL(""))
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(nil, Config{Storage: "s3"})
	assert.Error(t, err)
	_, err = New(nil, Config{Storage: StorageTable})
	assert.Error(t, err)
}

func TestLibraryBackends(t *testing.T) {
	backends := map[string]func(*testing.T, ...Option) *Library{
		"table": newTableLibrary,
		"file":  newFileLibrary,
	}
	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			srv, hits := newTestServer(t)
			lib := mk(t)
			ctx := context.Background()

			_, err := lib.Add(ctx, "not a url")
			assert.ErrorIs(t, err, ErrInvalidURL)

			doc, err := lib.Add(ctx, srv.URL+"/page")
			require.NoError(t, err)
			assert.NotEmpty(t, doc.ID)
			assert.Equal(t, "Postgres failover", doc.Title)
			assert.Equal(t, ContentHTML, doc.ContentType)
			assert.Contains(t, doc.Content, "<h1>Failover</h1>")
			assert.Contains(t, string(doc.Meta), `"status":200`)

			_, err = lib.Add(ctx, srv.URL+"/page")
			assert.ErrorIs(t, err, ErrAlreadyFetched)
			assert.Equal(t, 1, *hits, "duplicate must not refetch")

			lib.now = func() time.Time { return time.Now().Add(time.Minute) }
			txt, err := lib.Add(ctx, srv.URL+"/notes.txt")
			require.NoError(t, err)
			assert.Equal(t, ContentText, txt.ContentType)

			docs, err := lib.List(ctx)
			require.NoError(t, err)
			require.Len(t, docs, 2)
			assert.Equal(t, txt.ID, docs[0].ID, "newest first")

			got, err := lib.Get(ctx, doc.ID)
			require.NoError(t, err)
			assert.Equal(t, doc.Path, got.Path)

			require.NoError(t, lib.Delete(ctx, doc.ID))
			assert.ErrorIs(t, lib.Delete(ctx, doc.ID), ErrDocumentNotFound)
			_, err = lib.Get(ctx, doc.ID)
			assert.ErrorIs(t, err, ErrDocumentNotFound)

			docs, err = lib.List(ctx)
			require.NoError(t, err)
			assert.Len(t, docs, 1)

			// a deleted URL can be fetched again
			_, err = lib.Add(ctx, srv.URL+"/page")
			assert.NoError(t, err)

			_, err = lib.Get(ctx, "nope")
			assert.ErrorIs(t, err, ErrDocumentNotFound)
		})
	}
}

func TestAddFetchFailures(t *testing.T) {
	srv, _ := newTestServer(t)
	lib := newTableLibrary(t)
	ctx := context.Background()

	_, err := lib.Add(ctx, srv.URL+"/big")
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = lib.Add(ctx, srv.URL+"/gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")

	docs, err := lib.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

type markdownProvider struct {
	mu     sync.Mutex
	req    *ai.ChatRequest
	closed int
}

func (p *markdownProvider) Close() error {
	p.mu.Lock()
	p.closed++
	p.mu.Unlock()
	return nil
}

func (p *markdownProvider) ID() string    { return ai.ProviderOpenAI }
func (p *markdownProvider) Model() string { return "test" }

func (p *markdownProvider) Stream(context.Context, *ai.ChatRequest) (<-chan ai.StreamEvent, error) {
	panic("parse must not stream")
}

func (p *markdownProvider) Complete(_ context.Context, req *ai.ChatRequest) (*ai.Completion, error) {
	p.mu.Lock()
	p.req = req
	p.mu.Unlock()
	return &ai.Completion{Text: "# Failover\n\nPromote the replica.\n"}, nil
}

func TestParseConvertsHTML(t *testing.T) {
	srv, _ := newTestServer(t)
	prov := &markdownProvider{}
	maxTokens := 512
	settings := func() chat.Settings {
		return chat.Settings{Stream: true, Generation: ai.GenerationConfig{MaxTokens: &maxTokens}}
	}
	factory := func(ai.ProviderConfig) (ai.Provider, error) { return prov, nil }
	lib := newTableLibrary(t, WithParser(settings, factory))
	ctx := context.Background()

	doc, err := lib.Add(ctx, srv.URL+"/page")
	require.NoError(t, err)
	assert.False(t, doc.Parsed())

	parsed, err := lib.Parse(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Failover\n\nPromote the replica.", parsed.ParsedContent)
	assert.Equal(t, 1, prov.closed, "parse provider is released")

	require.NotNil(t, prov.req)
	require.Len(t, prov.req.Messages, 2)
	assert.Equal(t, ai.RoleSystem, prov.req.Messages[0].Role)
	assert.Equal(t, doc.Content, prov.req.Messages[1].Content)
	temp, ok := prov.req.Options.Float("temperature")
	require.True(t, ok)
	assert.InDelta(t, 0.5, temp, 1e-9)
	_, ok = prov.req.Options.Int("max_tokens")
	assert.False(t, ok, "max_tokens is dropped for parsing")

	stored, err := lib.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, stored.Parsed())

	html, err := lib.Render(ctx, doc.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Promote the replica.")
}

func TestParseWithoutParser(t *testing.T) {
	srv, _ := newTestServer(t)
	lib := newFileLibrary(t)
	ctx := context.Background()

	doc, err := lib.Add(ctx, srv.URL+"/page")
	require.NoError(t, err)
	_, err = lib.Parse(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrParserUnavailable)

	// plain text needs no model
	txt, err := lib.Add(ctx, srv.URL+"/notes.txt")
	require.NoError(t, err)
	parsed, err := lib.Parse(ctx, txt.ID)
	require.NoError(t, err)
	assert.Equal(t, "restart the worker pool", parsed.ParsedContent)
}

func TestReferences(t *testing.T) {
	srv, _ := newTestServer(t)
	lib := newTableLibrary(t)
	ctx := context.Background()

	_, err := lib.Add(ctx, srv.URL+"/page")
	require.NoError(t, err)

	refs, err := lib.References(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Postgres failover", refs[0].Title)
	assert.Equal(t, srv.URL+"/page", refs[0].Source)
	assert.Contains(t, refs[0].Content, "# Failover")
	assert.Contains(t, refs[0].Content, "Promote the replica.")
	assert.NotContains(t, refs[0].Content, "secret banner")
	assert.NotContains(t, refs[0].Content, "track()")

	var _ chat.DocumentSource = lib
}
