// Package documents is the reference-document library: pages fetched by URL,
// optionally converted to markdown by the model, and offered to chat sessions
// as context.
package documents

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Storage types.
const (
	StorageTable = "table"
	StorageFile  = "file"
)

// Content types.
const (
	ContentHTML = "html"
	ContentText = "text"
	ContentJSON = "json"
)

var (
	ErrInvalidURL        = errors.New("invalid URL")
	ErrAlreadyFetched    = errors.New("document already fetched")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrTooLarge          = errors.New("document exceeds size limit")
	ErrParserUnavailable = errors.New("document parsing is not configured")
)

// Document is one fetched source.
type Document struct {
	ID            string          `json:"id"`
	Path          string          `json:"url"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	ParsedContent string          `json:"parsed_content,omitempty"`
	ContentType   string          `json:"content_type"`
	Meta          json.RawMessage `json:"meta,omitempty"`
	Deleted       bool            `json:"is_deleted"`
	DeletedAt     int64           `json:"deleted_at,omitempty"`
	CreatedAt     int64           `json:"created_at"`
	UpdatedAt     int64           `json:"updated_at"`
}

// Parsed reports whether the model has produced a markdown version.
func (d Document) Parsed() bool {
	return strings.TrimSpace(d.ParsedContent) != ""
}

// Text returns the best plain rendition: parsed markdown when present,
// otherwise the visible text of the stored content.
func (d Document) Text() string {
	if d.Parsed() {
		return d.ParsedContent
	}
	if d.ContentType == ContentHTML {
		return ExtractVisibleText([]byte(d.Content), "text/html")
	}
	return d.Content
}

// backend persists documents. Deleted documents are invisible to every
// method except create.
type backend interface {
	create(ctx context.Context, doc Document) (Document, error)
	get(ctx context.Context, id string) (Document, error)
	byPath(ctx context.Context, path string) (Document, error)
	list(ctx context.Context) ([]Document, error)
	setParsed(ctx context.Context, id, parsed string, at int64) error
	remove(ctx context.Context, id string, at int64) error
}
