package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/neboloop/runbook/internal/db"
)

// tableBackend stores documents in the document_sources table.
type tableBackend struct {
	q *db.Queries
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrDocumentNotFound
	}
	return n, nil
}

func fromRow(r db.DocumentSource) Document {
	d := Document{
		ID:          strconv.FormatInt(r.ID, 10),
		Path:        r.Path,
		Title:       r.Title,
		Content:     r.Content,
		ContentType: r.ContentType,
		Deleted:     r.IsDeleted != 0,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ParsedContent.Valid {
		d.ParsedContent = r.ParsedContent.String
	}
	if r.DeletedAt.Valid {
		d.DeletedAt = r.DeletedAt.Int64
	}
	if json.Valid([]byte(r.Meta)) {
		d.Meta = json.RawMessage(r.Meta)
	}
	return d
}

func (b *tableBackend) create(ctx context.Context, doc Document) (Document, error) {
	meta := "{}"
	if len(doc.Meta) > 0 {
		meta = string(doc.Meta)
	}
	row, err := b.q.CreateDocumentSource(ctx, db.CreateDocumentSourceParams{
		Path:        doc.Path,
		Title:       doc.Title,
		Content:     doc.Content,
		ContentType: doc.ContentType,
		Meta:        meta,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	})
	if err != nil {
		return Document{}, err
	}
	return fromRow(row), nil
}

func (b *tableBackend) get(ctx context.Context, id string) (Document, error) {
	n, err := parseID(id)
	if err != nil {
		return Document{}, err
	}
	row, err := b.q.GetDocumentSource(ctx, n)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return fromRow(row), nil
}

func (b *tableBackend) byPath(ctx context.Context, path string) (Document, error) {
	row, err := b.q.GetDocumentSourceByPath(ctx, path)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return fromRow(row), nil
}

func (b *tableBackend) list(ctx context.Context) ([]Document, error) {
	rows, err := b.q.ListDocumentSources(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, fromRow(r))
	}
	return docs, nil
}

func (b *tableBackend) setParsed(ctx context.Context, id, parsed string, at int64) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := b.q.SetDocumentParsedContent(ctx, db.SetDocumentParsedContentParams{
		ParsedContent: sql.NullString{String: parsed, Valid: true},
		UpdatedAt:     at,
		ID:            n,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (b *tableBackend) remove(ctx context.Context, id string, at int64) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	affected, err := b.q.SoftDeleteDocumentSource(ctx, db.SoftDeleteDocumentSourceParams{
		DeletedAt: sql.NullInt64{Int64: at, Valid: true},
		UpdatedAt: at,
		ID:        n,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
