package runbook

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

func ActivateRunbookHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RunbookRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		sess, err := handler.Session(r.Context(), svcCtx)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		if err := sess.SwitchRunbook(r.Context(), req.Id); err != nil {
			handler.WriteError(w, err)
			return
		}
		resp := types.FromState(sess.Snapshot())
		httputil.OkJSON(w, &resp)
	}
}
