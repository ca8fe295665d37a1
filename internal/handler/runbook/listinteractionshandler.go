package runbook

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

func ListInteractionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RunbookRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		if _, err := handler.OwnedRunbook(r.Context(), svcCtx, req.Id); err != nil {
			handler.WriteError(w, err)
			return
		}
		cis, err := svcCtx.History.ListInteractions(r.Context(), req.Id)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		httputil.OkJSON(w, &types.InteractionsResponse{Interactions: types.FromInteractions(cis)})
	}
}
