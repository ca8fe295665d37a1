package document

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

// AddDocumentHandler fetches a URL into the library.
func AddDocumentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AddDocumentRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		doc, err := svcCtx.Documents.Add(r.Context(), req.Url)
		if err != nil {
			logging.WithContext(r.Context()).Warnf("add document %q: %v", req.Url, err)
			handler.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, &types.DocumentResponse{Document: types.FromDocumentDetail(doc)})
	}
}
