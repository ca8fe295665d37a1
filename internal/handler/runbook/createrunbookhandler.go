package runbook

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

// CreateRunbookHandler starts a new runbook and makes it the active one.
func CreateRunbookHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := handler.Session(r.Context(), svcCtx)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		rb, err := sess.NewRunbook(r.Context())
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, &types.RunbookResponse{Runbook: types.FromRunbook(rb)})
	}
}
