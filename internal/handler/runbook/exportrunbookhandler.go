package runbook

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/history"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

func ExportRunbookHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
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
		path, err := svcCtx.Exporter.Export(r.Context(), req.Id)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		httputil.OkJSON(w, &types.ExportResponse{Path: path, Status: history.StatusExported})
	}
}
