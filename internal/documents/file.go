package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// fileBackend keeps one JSON file per document under dir, named by a random
// id. Deletion is soft: the file stays with is_deleted set.
type fileBackend struct {
	dir string
	mu  sync.Mutex
}

func newFileBackend(dir string) (*fileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &fileBackend{dir: dir}, nil
}

func (b *fileBackend) path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrDocumentNotFound
	}
	return filepath.Join(b.dir, id+".json"), nil
}

func (b *fileBackend) read(id string) (Document, error) {
	p, err := b.path(id)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", p, err)
	}
	return d, nil
}

func (b *fileBackend) write(d Document) error {
	p, err := b.path(d.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (b *fileBackend) all() ([]Document, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}
	var docs []Document
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		d, err := b.read(strings.TrimSuffix(name, ".json"))
		if errors.Is(err, ErrDocumentNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (b *fileBackend) create(_ context.Context, doc Document) (Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	doc.ID = uuid.NewString()
	if len(doc.Meta) == 0 {
		doc.Meta = json.RawMessage("{}")
	}
	if err := b.write(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (b *fileBackend) get(_ context.Context, id string) (Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.read(id)
	if err != nil {
		return Document{}, err
	}
	if d.Deleted {
		return Document{}, ErrDocumentNotFound
	}
	return d, nil
}

func (b *fileBackend) byPath(_ context.Context, path string) (Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	docs, err := b.all()
	if err != nil {
		return Document{}, err
	}
	for _, d := range docs {
		if !d.Deleted && d.Path == path {
			return d, nil
		}
	}
	return Document{}, ErrDocumentNotFound
}

func (b *fileBackend) list(_ context.Context) ([]Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	docs, err := b.all()
	if err != nil {
		return nil, err
	}
	active := docs[:0]
	for _, d := range docs {
		if !d.Deleted {
			active = append(active, d)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].CreatedAt != active[j].CreatedAt {
			return active[i].CreatedAt > active[j].CreatedAt
		}
		return active[i].ID > active[j].ID
	})
	return active, nil
}

func (b *fileBackend) setParsed(_ context.Context, id, parsed string, at int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.read(id)
	if err != nil {
		return err
	}
	if d.Deleted {
		return ErrDocumentNotFound
	}
	d.ParsedContent = parsed
	d.UpdatedAt = at
	return b.write(d)
}

func (b *fileBackend) remove(_ context.Context, id string, at int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.read(id)
	if err != nil {
		return err
	}
	if d.Deleted {
		return ErrDocumentNotFound
	}
	d.Deleted = true
	d.DeletedAt = at
	d.UpdatedAt = at
	return b.write(d)
}
