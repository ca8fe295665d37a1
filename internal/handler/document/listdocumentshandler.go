package document

import (
	"net/http"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

func ListDocumentsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := svcCtx.Documents.List(r.Context())
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		httputil.OkJSON(w, &types.ListDocumentsResponse{Documents: types.FromDocuments(docs)})
	}
}
