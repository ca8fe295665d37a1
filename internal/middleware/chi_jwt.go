package middleware

import (
	"net/http"
	"strings"

	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/logging"
)

// DevUserHeader names the user in dev mode, where no token is required.
const DevUserHeader = "X-Runbook-User"

// AuthConfig configures Auth.
type AuthConfig struct {
	Secret  string
	DevMode bool
	// DevUser is used in dev mode when the request names nobody.
	DevUser string
}

// Auth creates a chi middleware that validates session tokens and stores the
// user name in the request context. The token comes from a Bearer
// Authorization header or, for WebSocket upgrades, the token query parameter.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var username string
			if cfg.DevMode {
				username = strings.TrimSpace(r.Header.Get(DevUserHeader))
				if username == "" {
					username = cfg.DevUser
				}
			} else {
				tokenString, msg := BearerToken(r)
				if tokenString == "" {
					httputil.Unauthorized(w, msg)
					return
				}
				claims, err := ParseToken(cfg.Secret, tokenString)
				if err != nil {
					httputil.Unauthorized(w, "invalid token")
					return
				}
				username = claims.Username
			}

			ctx := WithUsername(r.Context(), username)
			ctx = logging.ContextWith(ctx, "user", username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken returns the session token of r, or "" and the reason it is
// missing.
func BearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, ""
		}
		return "", "missing authorization header"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", "invalid authorization header format"
	}
	return parts[1], ""
}
