package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neboloop/runbook/internal/ai"
	"github.com/neboloop/runbook/internal/chat"
	"github.com/neboloop/runbook/internal/config"
	"github.com/neboloop/runbook/internal/db"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/markdown"
)

const (
	userAgent        = "runbook-document-fetcher/1.0"
	parseTemperature = 0.5
	// Per-document cap on text handed to the model as reference.
	maxReferenceChars = 16000
)

// Config selects storage and fetch limits.
type Config struct {
	Storage      string
	Dir          string
	FetchTimeout time.Duration
	MaxBytes     int64
}

// ConfigFrom extracts the document settings from the application config.
func ConfigFrom(c config.Config) Config {
	return Config{
		Storage:      c.Documents.Storage,
		Dir:          c.Documents.Dir,
		FetchTimeout: time.Duration(c.Documents.FetchTimeout) * time.Second,
		MaxBytes:     c.Documents.MaxBytes,
	}
}

// Library fetches, stores and converts reference documents.
type Library struct {
	backend  backend
	client   *http.Client
	maxBytes int64
	now      func() time.Time

	settings    func() chat.Settings
	newProvider chat.ProviderFactory
}

// Option configures a Library.
type Option func(*Library)

// WithHTTPClient replaces the client used to fetch documents.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Library) { l.client = c }
}

// WithParser enables Parse. settings is read on every call so provider
// changes take effect without rebuilding the library.
func WithParser(settings func() chat.Settings, factory chat.ProviderFactory) Option {
	return func(l *Library) {
		l.settings = settings
		l.newProvider = factory
	}
}

// New creates a library. Table storage uses store; file storage writes under
// cfg.Dir.
func New(store *db.Store, cfg Config, opts ...Option) (*Library, error) {
	l := &Library{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		maxBytes: cfg.MaxBytes,
		now:      time.Now,
	}
	switch cfg.Storage {
	case StorageTable, "":
		if store == nil {
			return nil, fmt.Errorf("table storage requires a database")
		}
		l.backend = &tableBackend{q: store.Queries}
	case StorageFile:
		fb, err := newFileBackend(cfg.Dir)
		if err != nil {
			return nil, err
		}
		l.backend = fb
	default:
		return nil, fmt.Errorf("unknown document storage %q", cfg.Storage)
	}
	if l.maxBytes <= 0 {
		l.maxBytes = 10 << 20
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// ValidURL reports whether raw is an absolute http(s) URL with a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Add fetches rawURL and stores it. A URL already in the library is rejected
// with ErrAlreadyFetched.
func (l *Library) Add(ctx context.Context, rawURL string) (Document, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !ValidURL(rawURL) {
		return Document{}, ErrInvalidURL
	}
	if _, err := l.backend.byPath(ctx, rawURL); err == nil {
		return Document{}, ErrAlreadyFetched
	} else if !errors.Is(err, ErrDocumentNotFound) {
		return Document{}, err
	}

	page, err := l.fetch(ctx, rawURL)
	if err != nil {
		return Document{}, err
	}

	now := l.now().Unix()
	meta, _ := json.Marshal(map[string]any{
		"status":     page.status,
		"media_type": page.mediaType,
		"bytes":      len(page.body),
		"fetched_at": l.now().UTC().Format(time.RFC3339),
		"final_url":  page.finalURL,
	})
	doc, err := l.backend.create(ctx, Document{
		Path:        rawURL,
		Title:       titleFor(page, rawURL),
		Content:     string(page.body),
		ContentType: page.contentType,
		Meta:        meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Document{}, fmt.Errorf("store document: %w", err)
	}
	logging.Infof("added document %s (%s, %d bytes)", doc.Path, doc.ContentType, len(page.body))
	return doc, nil
}

type fetchedPage struct {
	body        []byte
	status      int
	mediaType   string
	contentType string
	finalURL    string
}

func (l *Library) fetch(ctx context.Context, rawURL string) (fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fetchedPage{}, ErrInvalidURL
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json,text/plain;q=0.9,*/*;q=0.5")

	resp, err := l.client.Do(req)
	if err != nil {
		return fetchedPage{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fetchedPage{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return fetchedPage{}, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if int64(len(body)) > l.maxBytes {
		return fetchedPage{}, ErrTooLarge
	}

	mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mt == "" {
		mt, _, _ = mime.ParseMediaType(http.DetectContentType(body))
	}
	return fetchedPage{
		body:        body,
		status:      resp.StatusCode,
		mediaType:   mt,
		contentType: classify(mt),
		finalURL:    resp.Request.URL.String(),
	}, nil
}

func classify(mediaType string) string {
	switch {
	case strings.Contains(mediaType, "html"):
		return ContentHTML
	case strings.Contains(mediaType, "json"):
		return ContentJSON
	default:
		return ContentText
	}
}

func titleFor(p fetchedPage, rawURL string) string {
	if p.contentType == ContentHTML {
		if t := ExtractTitle(p.body); t != "" {
			return t
		}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.TrimSuffix(u.Host+u.Path, "/")
}

// List returns active documents, newest first.
func (l *Library) List(ctx context.Context) ([]Document, error) {
	return l.backend.list(ctx)
}

// Get returns an active document or ErrDocumentNotFound.
func (l *Library) Get(ctx context.Context, id string) (Document, error) {
	return l.backend.get(ctx, id)
}

// Delete soft-deletes a document. Its URL may be added again afterwards.
func (l *Library) Delete(ctx context.Context, id string) error {
	if err := l.backend.remove(ctx, id, l.now().Unix()); err != nil {
		return err
	}
	logging.Infof("deleted document %s", id)
	return nil
}

// Parse asks the model to convert an HTML document to markdown and stores the
// result. Text and JSON documents are stored unchanged. The request is never
// streamed.
func (l *Library) Parse(ctx context.Context, id string) (Document, error) {
	doc, err := l.backend.get(ctx, id)
	if err != nil {
		return Document{}, err
	}

	parsed := doc.Content
	if doc.ContentType == ContentHTML {
		if parsed, err = l.convert(ctx, doc); err != nil {
			return Document{}, err
		}
	}

	at := l.now().Unix()
	if err := l.backend.setParsed(ctx, id, parsed, at); err != nil {
		return Document{}, err
	}
	doc.ParsedContent = parsed
	doc.UpdatedAt = at
	return doc, nil
}

func (l *Library) convert(ctx context.Context, doc Document) (string, error) {
	if l.settings == nil || l.newProvider == nil {
		return "", ErrParserUnavailable
	}
	s := l.settings()
	p, err := l.newProvider(s.Provider)
	if err != nil {
		return "", err
	}
	defer ai.Release(p)

	gen := s.Generation
	gen.MaxTokens = nil
	temp := parseTemperature
	gen.Temperature = &temp

	msgs := []ai.Message{
		{Role: ai.RoleSystem, Content: htmlToMarkdownPrompt},
		{Role: ai.RoleUser, Content: doc.Content},
	}
	logging.Infof("regenerating parsed document: %s", doc.Path)
	resp, err := ai.Dispatch(ctx, p, "", msgs, false, gen)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Text), nil
}

// Render returns the document as HTML: the parsed markdown when available,
// otherwise its visible text.
func (l *Library) Render(ctx context.Context, id string) (string, error) {
	doc, err := l.backend.get(ctx, id)
	if err != nil {
		return "", err
	}
	return markdown.Render(doc.Text()), nil
}

// References returns active documents for inclusion in chat prompts.
func (l *Library) References(ctx context.Context) ([]chat.ReferenceDocument, error) {
	docs, err := l.backend.list(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]chat.ReferenceDocument, 0, len(docs))
	for _, d := range docs {
		text := clip(d.Text(), maxReferenceChars)
		if text == "" {
			continue
		}
		refs = append(refs, chat.ReferenceDocument{Title: d.Title, Source: d.Path, Content: text})
	}
	return refs, nil
}
