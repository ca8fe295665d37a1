package chat

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

func GetStateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := handler.Session(r.Context(), svcCtx)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		resp := types.FromState(sess.Snapshot())
		httputil.OkJSON(w, &resp)
	}
}
