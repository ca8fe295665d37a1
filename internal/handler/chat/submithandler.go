package chat

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

// SubmitHandler sends the session prompt, optionally replacing it first, and
// responds once the answer is stored. Live fragments go to WebSocket
// subscribers of the same session.
func SubmitHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SubmitRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		sess, err := handler.Session(r.Context(), svcCtx)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		if req.Prompt != nil {
			sess.SetPrompt(*req.Prompt)
		}

		res, err := sess.SubmitResult(r.Context())
		if err != nil {
			handler.WriteError(w, err)
			return
		}

		resp := types.SubmitResponse{
			Submitted: res.Interaction != nil || res.Verdict.Reason != "",
			Allowed:   res.Verdict.Allowed,
			Reason:    string(res.Verdict.Reason),
			Message:   res.Verdict.Message,
		}
		if res.Interaction != nil {
			ci := types.FromInteraction(*res.Interaction)
			resp.Interaction = &ci
		}
		httputil.OkJSON(w, &resp)
	}
}
