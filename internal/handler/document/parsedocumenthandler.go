package document

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

// ParseDocumentHandler converts a document to markdown with the model.
func ParseDocumentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DocumentRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}
		doc, err := svcCtx.Documents.Parse(r.Context(), req.Id)
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		httputil.OkJSON(w, &types.DocumentResponse{Document: types.FromDocumentDetail(doc)})
	}
}
