package chat

import (
	"context"
	"fmt"
	"time"
)

// Scope decides which earlier prompts count as duplicates.
type Scope string

const (
	// ScopeRunbook rejects a prompt the user already asked in the same runbook.
	ScopeRunbook Scope = "runbook"
	// ScopeUser rejects a prompt the user already asked in any runbook.
	ScopeUser Scope = "user"
)

// Reason explains a rejection.
type Reason string

const (
	ReasonDuplicate   Reason = "duplicate"
	ReasonRateLimited Reason = "rate_limited"
)

// Verdict is the guard's answer. A rejection is not an error.
type Verdict struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// GuardStore is the part of the history store the guard reads.
type GuardStore interface {
	Exists(ctx context.Context, username, prompt string, runbookID int64) (bool, error)
	ExistsForUser(ctx context.Context, username, prompt string) (bool, error)
	CountSince(ctx context.Context, username string, since time.Time) (int, error)
}

// GuardConfig configures a Guard.
type GuardConfig struct {
	Scope        Scope
	RateLimit    bool
	MaxQuestions int
	Window       time.Duration
}

// Guard rejects duplicate prompts and users over their question budget.
type Guard struct {
	store GuardStore
	cfg   GuardConfig
	now   func() time.Time
}

// NewGuard creates a guard. Zero values in cfg fall back to runbook scope, ten
// questions and a 24h window.
func NewGuard(store GuardStore, cfg GuardConfig) *Guard {
	if cfg.Scope == "" {
		cfg.Scope = ScopeRunbook
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	return &Guard{store: store, cfg: cfg, now: time.Now}
}

// Config returns the effective configuration.
func (g *Guard) Config() GuardConfig { return g.cfg }

// Check decides whether username may submit prompt to runbookID. It has no
// side effects.
func (g *Guard) Check(ctx context.Context, username, prompt string, runbookID int64) (Verdict, error) {
	var (
		dup bool
		err error
	)
	if g.cfg.Scope == ScopeUser {
		dup, err = g.store.ExistsForUser(ctx, username, prompt)
	} else {
		dup, err = g.store.Exists(ctx, username, prompt, runbookID)
	}
	if err != nil {
		return Verdict{}, fmt.Errorf("duplicate check: %w", err)
	}
	if dup {
		msg := "Question for this runbook already exists."
		if g.cfg.Scope == ScopeUser {
			msg = "You have already asked this question."
		}
		return Verdict{Reason: ReasonDuplicate, Message: msg}, nil
	}

	if g.cfg.RateLimit {
		n, err := g.store.CountSince(ctx, username, g.now().Add(-g.cfg.Window))
		if err != nil {
			return Verdict{}, fmt.Errorf("rate check: %w", err)
		}
		if n >= g.cfg.MaxQuestions {
			return Verdict{
				Reason:  ReasonRateLimited,
				Message: fmt.Sprintf("You have asked too many questions in the past %s (limit %d).", formatWindow(g.cfg.Window), g.cfg.MaxQuestions),
			}, nil
		}
	}

	return Verdict{Allowed: true}, nil
}

// Allowed is Check reduced to a boolean.
func (g *Guard) Allowed(ctx context.Context, username, prompt string, runbookID int64) (bool, error) {
	v, err := g.Check(ctx, username, prompt, runbookID)
	return v.Allowed, err
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
