package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/neboloop/runbook/internal/ai"
	"github.com/neboloop/runbook/internal/chat"
	"github.com/neboloop/runbook/internal/db"
	"github.com/neboloop/runbook/internal/documents"
	"github.com/neboloop/runbook/internal/export"
	"github.com/neboloop/runbook/internal/history"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/middleware"
	"github.com/neboloop/runbook/internal/svc"
)

// WriteError maps service errors onto HTTP status codes.
func WriteError(w http.ResponseWriter, err error) {
	var (
		validation  *chat.ValidationError
		unsupported *ai.UnsupportedProviderError
		completion  *ai.CompletionSessionError
		terminated  *ai.StreamTerminationError
		persistence *chat.PersistenceError
	)
	switch {
	case errors.As(err, &validation), errors.Is(err, documents.ErrInvalidURL):
		httputil.Error(w, err)
	case errors.Is(err, history.ErrRunbookNotFound), errors.Is(err, history.ErrInteractionNotFound),
		errors.Is(err, documents.ErrDocumentNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, chat.ErrSubmissionInFlight), errors.Is(err, documents.ErrAlreadyFetched):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, export.ErrEmptyRunbook):
		httputil.ErrorWithCode(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, documents.ErrTooLarge):
		httputil.ErrorWithCode(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.As(err, &completion), errors.As(err, &terminated):
		httputil.ErrorWithCode(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, documents.ErrParserUnavailable):
		httputil.ErrorWithCode(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &unsupported), errors.As(err, &persistence):
		httputil.InternalError(w, err.Error())
	default:
		logging.Errorf("request failed: %v", err)
		httputil.InternalError(w, "")
	}
}

// Session returns the chat session of the authenticated user.
func Session(ctx context.Context, svcCtx *svc.ServiceContext) (*chat.Session, error) {
	return svcCtx.Chat.Session(ctx, middleware.GetUsername(ctx))
}

// OwnedRunbook returns runbook id if the authenticated user created it.
// Other users' runbooks are reported as missing.
func OwnedRunbook(ctx context.Context, svcCtx *svc.ServiceContext, id int64) (db.Runbook, error) {
	rb, err := svcCtx.History.GetRunbook(ctx, id)
	if err != nil {
		return db.Runbook{}, err
	}
	if rb.CreatedBy != middleware.GetUsername(ctx) {
		return db.Runbook{}, history.ErrRunbookNotFound
	}
	return rb, nil
}
