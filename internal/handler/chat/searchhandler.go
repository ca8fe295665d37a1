package chat

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/middleware"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

// SearchHandler searches the user's prompts and answers, newest first.
func SearchHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SearchRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		limit := httputil.QueryInt(r, "limit", svcCtx.Config.Guard.MaxQuestions)
		if limit <= 0 {
			limit = svcCtx.Config.Guard.MaxQuestions
		}

		found, err := svcCtx.History.SearchInteractions(r.Context(), middleware.GetUsername(r.Context()), req.Filter, limit)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		httputil.OkJSON(w, &types.InteractionsResponse{Interactions: types.FromInteractions(found)})
	}
}
