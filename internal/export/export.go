// Package export writes runbooks to markdown files with YAML front matter.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/neboloop/runbook/internal/db"
	"github.com/neboloop/runbook/internal/history"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/markdown"
)

var ErrEmptyRunbook = errors.New("runbook has no interactions")

// Store is the part of the history store the exporter reads and updates.
type Store interface {
	GetRunbook(ctx context.Context, id int64) (db.Runbook, error)
	ListInteractions(ctx context.Context, runbookID int64) ([]db.ChatInteraction, error)
	SetRunbookStatus(ctx context.Context, id int64, status string) error
	RunbooksWithStatus(ctx context.Context, status string) ([]db.Runbook, error)
}

// FrontMatter heads every exported file.
type FrontMatter struct {
	ID           int64     `yaml:"id"`
	Title        string    `yaml:"title"`
	Heading      string    `yaml:"heading,omitempty"`
	Owner        string    `yaml:"owner"`
	Created      time.Time `yaml:"created"`
	Updated      time.Time `yaml:"updated"`
	Exported     time.Time `yaml:"exported"`
	Interactions int       `yaml:"interactions"`
}

// Exporter renders runbooks into dir.
type Exporter struct {
	store Store
	dir   string
	now   func() time.Time

	mu    sync.Mutex
	sched *cron.Cron
}

func New(store Store, dir string) *Exporter {
	return &Exporter{store: store, dir: dir, now: time.Now}
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

// Render produces the markdown document for rb.
func (e *Exporter) Render(rb db.Runbook, interactions []db.ChatInteraction) ([]byte, error) {
	fm := FrontMatter{
		ID:           rb.ID,
		Title:        rb.Title,
		Owner:        rb.CreatedBy,
		Created:      time.Unix(rb.CreatedAt, 0).UTC(),
		Updated:      time.Unix(rb.UpdatedAt, 0).UTC(),
		Exported:     e.now().UTC().Truncate(time.Second),
		Interactions: len(interactions),
	}
	for _, ci := range interactions {
		if h := markdown.FirstHeading(ci.Answer); h != "" {
			fm.Heading = h
			break
		}
	}

	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# %s\n", rb.Title)
	for i, ci := range interactions {
		fmt.Fprintf(&buf, "\n## %d. %s\n\n", i+1, firstLine(ci.Prompt))
		fmt.Fprintf(&buf, "_%s asked on %s_\n\n", ci.UserName, time.Unix(ci.CreatedAt, 0).UTC().Format(time.RFC1123))
		if rest := remainingLines(ci.Prompt); rest != "" {
			for _, l := range strings.Split(rest, "\n") {
				buf.WriteString("> " + l + "\n")
			}
			buf.WriteString("\n")
		}
		buf.WriteString(strings.TrimSpace(ci.Answer))
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func remainingLines(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return ""
}

// FileName is the export file for a runbook.
func FileName(id int64) string {
	return fmt.Sprintf("runbook-%d.md", id)
}

// Export writes runbook id to the output directory, marks it exported and
// returns the file path. Re-exporting overwrites the previous file.
func (e *Exporter) Export(ctx context.Context, id int64) (string, error) {
	rb, err := e.store.GetRunbook(ctx, id)
	if err != nil {
		return "", err
	}
	interactions, err := e.store.ListInteractions(ctx, id)
	if err != nil {
		return "", fmt.Errorf("list interactions: %w", err)
	}
	if len(interactions) == 0 {
		return "", ErrEmptyRunbook
	}

	data, err := e.Render(rb, interactions)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(e.dir, FileName(id))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	if err := e.store.SetRunbookStatus(ctx, id, history.StatusExported); err != nil {
		return "", err
	}
	logging.WithContext(logging.ContextWith(ctx, "runbook", id)).Infof("exported runbook to %s", path)
	return path, nil
}

// ExportActive exports every active runbook that has interactions.
func (e *Exporter) ExportActive(ctx context.Context) ([]string, error) {
	rbs, err := e.store.RunbooksWithStatus(ctx, history.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active runbooks: %w", err)
	}
	var paths []string
	var errs []error
	for _, rb := range rbs {
		p, err := e.Export(ctx, rb.ID)
		if errors.Is(err, ErrEmptyRunbook) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("runbook %d: %w", rb.ID, err))
			continue
		}
		paths = append(paths, p)
	}
	return paths, errors.Join(errs...)
}

// Schedule runs ExportActive on the standard five-field cron spec. Overlapping
// runs are skipped. Calling Schedule again replaces the previous schedule.
func (e *Exporter) Schedule(spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(spec, func() {
		paths, err := e.ExportActive(context.Background())
		if err != nil {
			logging.Errorf("scheduled export: %v", err)
		}
		if len(paths) > 0 {
			logging.Infof("scheduled export wrote %d runbooks", len(paths))
		}
	}); err != nil {
		return fmt.Errorf("export schedule %q: %w", spec, err)
	}

	e.mu.Lock()
	old := e.sched
	e.sched = c
	e.mu.Unlock()
	if old != nil {
		old.Stop()
	}
	c.Start()
	logging.Infof("runbook export scheduled: %s", spec)
	return nil
}

// Stop cancels the schedule and waits for a running export to finish.
func (e *Exporter) Stop() {
	e.mu.Lock()
	c := e.sched
	e.sched = nil
	e.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
