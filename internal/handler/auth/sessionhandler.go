package auth

import (
	"net/http"

	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/middleware"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

// SessionHandler reports whether the request carries a valid session.
func SessionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := svcCtx.Config
		resp := types.SessionResponse{DevMode: c.IsDevMode()}
		if c.IsDevMode() {
			resp.Authenticated = true
			resp.Username = c.Chat.Username
			if u := r.Header.Get(middleware.DevUserHeader); u != "" {
				resp.Username = u
			}
		} else if tok, _ := middleware.BearerToken(r); tok != "" {
			if claims, err := middleware.ParseToken(c.Auth.AccessSecret, tok); err == nil {
				resp.Authenticated = true
				resp.Username = claims.Username
			}
		}
		httputil.OkJSON(w, &resp)
	}
}
