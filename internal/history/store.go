// Package history persists runbooks and their chat interactions.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neboloop/runbook/internal/db"
)

var (
	ErrRunbookNotFound     = errors.New("runbook not found")
	ErrInteractionNotFound = errors.New("interaction not found")
)

// Defaults stamped on interactions that leave these fields empty.
const (
	DefaultAssistantName      = "runbook"
	DefaultUserAvatarURL      = "/user-avatar.png"
	DefaultAssistantAvatarURL = "/runbook-avatar.png"
)

// Runbook statuses.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDraft    = "draft"
	StatusExported = "exported"
)

// Store is the history store. Every write runs in its own transaction unless
// the Store was obtained from WithTx, in which case the caller owns commit and
// rollback.
type Store struct {
	store *db.Store
	q     *db.Queries
	inTx  bool
	now   func() time.Time
}

// New creates a history store over an open database.
func New(store *db.Store) *Store {
	return &Store{
		store: store,
		q:     store.Queries,
		now:   time.Now,
	}
}

// WithTx returns a Store whose operations run inside tx.
func (s *Store) WithTx(tx *sql.Tx) *Store {
	return &Store{
		store: s.store,
		q:     s.q.WithTx(tx),
		inTx:  true,
		now:   s.now,
	}
}

func (s *Store) update(ctx context.Context, fn func(q *db.Queries) error) error {
	if s.inTx {
		return fn(s.q)
	}
	return s.store.ExecTx(ctx, fn)
}

// CreateRunbook inserts a runbook for owner. The title is derived from the
// assigned id.
func (s *Store) CreateRunbook(ctx context.Context, owner string) (db.Runbook, error) {
	var rb db.Runbook
	err := s.update(ctx, func(q *db.Queries) error {
		now := s.now().Unix()
		created, err := q.CreateRunbook(ctx, db.CreateRunbookParams{
			CreatedBy: owner,
			Status:    StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		created.Title = fmt.Sprintf("Runbook %d", created.ID)
		if err := q.SetRunbookTitle(ctx, db.SetRunbookTitleParams{
			Title:     created.Title,
			UpdatedAt: now,
			ID:        created.ID,
		}); err != nil {
			return err
		}
		rb = created
		return nil
	})
	if err != nil {
		return db.Runbook{}, fmt.Errorf("create runbook: %w", err)
	}
	return rb, nil
}

// GetRunbook returns a runbook by id.
func (s *Store) GetRunbook(ctx context.Context, id int64) (db.Runbook, error) {
	rb, err := s.q.GetRunbook(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Runbook{}, ErrRunbookNotFound
	}
	return rb, err
}

// ListRunbooks returns the owner's runbooks, newest first.
func (s *Store) ListRunbooks(ctx context.Context, owner string) ([]db.Runbook, error) {
	return s.q.ListRunbooksByOwner(ctx, owner)
}

// RunbooksWithStatus returns every runbook in status, oldest first.
func (s *Store) RunbooksWithStatus(ctx context.Context, status string) ([]db.Runbook, error) {
	return s.q.ListRunbooksByStatus(ctx, status)
}

// LatestRunbook returns the owner's newest runbook or ErrRunbookNotFound.
func (s *Store) LatestRunbook(ctx context.Context, owner string) (db.Runbook, error) {
	rb, err := s.q.GetLatestRunbookByOwner(ctx, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Runbook{}, ErrRunbookNotFound
	}
	return rb, err
}

// SetRunbookStatus changes a runbook's status.
func (s *Store) SetRunbookStatus(ctx context.Context, id int64, status string) error {
	return s.update(ctx, func(q *db.Queries) error {
		n, err := q.UpdateRunbookStatus(ctx, db.UpdateRunbookStatusParams{
			Status:    status,
			UpdatedAt: s.now().Unix(),
			ID:        id,
		})
		if err != nil {
			return fmt.Errorf("set runbook status: %w", err)
		}
		if n == 0 {
			return ErrRunbookNotFound
		}
		return nil
	})
}

// ListInteractions returns a runbook's interactions in insertion order.
func (s *Store) ListInteractions(ctx context.Context, runbookID int64) ([]db.ChatInteraction, error) {
	return s.q.ListChatInteractionsByRunbook(ctx, runbookID)
}

// SaveInteraction inserts ci when its ID is zero and updates it otherwise. On
// insert the assigned ID and defaults are written back into ci.
func (s *Store) SaveInteraction(ctx context.Context, ci *db.ChatInteraction) error {
	err := s.update(ctx, func(q *db.Queries) error {
		now := s.now().Unix()
		if ci.ID != 0 {
			n, err := q.UpdateChatInteraction(ctx, db.UpdateChatInteractionParams{
				Prompt: ci.Prompt,
				Answer: ci.Answer,
				ID:     ci.ID,
			})
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrInteractionNotFound
			}
			return q.TouchRunbook(ctx, db.TouchRunbookParams{UpdatedAt: now, ID: ci.RunbookID})
		}

		applyDefaults(ci, now)
		saved, err := q.CreateChatInteraction(ctx, db.CreateChatInteractionParams{
			Prompt:             ci.Prompt,
			Answer:             ci.Answer,
			UserName:           ci.UserName,
			AssistantName:      ci.AssistantName,
			UserAvatarUrl:      ci.UserAvatarUrl,
			AssistantAvatarUrl: ci.AssistantAvatarUrl,
			CreatedAt:          ci.CreatedAt,
			RunbookID:          ci.RunbookID,
		})
		if err != nil {
			return err
		}
		if err := q.TouchRunbook(ctx, db.TouchRunbookParams{UpdatedAt: now, ID: ci.RunbookID}); err != nil {
			return err
		}
		*ci = saved
		return nil
	})
	if err != nil {
		return fmt.Errorf("save interaction: %w", err)
	}
	return nil
}

func applyDefaults(ci *db.ChatInteraction, now int64) {
	if ci.AssistantName == "" {
		ci.AssistantName = DefaultAssistantName
	}
	if ci.UserAvatarUrl == "" {
		ci.UserAvatarUrl = DefaultUserAvatarURL
	}
	if ci.AssistantAvatarUrl == "" {
		ci.AssistantAvatarUrl = DefaultAssistantAvatarURL
	}
	if ci.CreatedAt == 0 {
		ci.CreatedAt = now
	}
}

// Exists reports whether username already asked prompt in the given runbook.
func (s *Store) Exists(ctx context.Context, username, prompt string, runbookID int64) (bool, error) {
	n, err := s.q.CountChatInteractionsByPrompt(ctx, db.CountChatInteractionsByPromptParams{
		UserName:  username,
		RunbookID: runbookID,
		Prompt:    prompt,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ExistsForUser reports whether username already asked prompt in any runbook.
func (s *Store) ExistsForUser(ctx context.Context, username, prompt string) (bool, error) {
	n, err := s.q.CountChatInteractionsByUserPrompt(ctx, db.CountChatInteractionsByUserPromptParams{
		UserName: username,
		Prompt:   prompt,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountSince counts the interactions username created at or after since.
func (s *Store) CountSince(ctx context.Context, username string, since time.Time) (int, error) {
	n, err := s.q.CountChatInteractionsSince(ctx, db.CountChatInteractionsSinceParams{
		UserName:  username,
		CreatedAt: since.Unix(),
	})
	return int(n), err
}

// likeEscaper makes LIKE wildcards in a search filter match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchInteractions returns username's interactions whose prompt or answer
// contains filter, newest first.
func (s *Store) SearchInteractions(ctx context.Context, username, filter string, limit int) ([]db.ChatInteraction, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.q.SearchChatInteractions(ctx, db.SearchChatInteractionsParams{
		UserName: username,
		Filter:   likeEscaper.Replace(filter),
		Limit:    int64(limit),
	})
}
