package runbook

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/middleware"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

func ListRunbooksHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := handler.Session(r.Context(), svcCtx)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		rbs, err := svcCtx.History.ListRunbooks(r.Context(), middleware.GetUsername(r.Context()))
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		httputil.OkJSON(w, &types.ListRunbooksResponse{
			Runbooks: types.FromRunbooks(rbs),
			ActiveId: sess.Snapshot().RunbookID,
		})
	}
}
