package auth

import (
	"net/http"

	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/svc"
)

// LogoutHandler acknowledges a logout. Tokens are stateless, so the client
// simply discards its token.
func LogoutHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.NoContent(w)
	}
}
