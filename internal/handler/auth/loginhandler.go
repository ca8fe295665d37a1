package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/neboloop/runbook/internal/config"
	"github.com/neboloop/runbook/internal/httputil"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/middleware"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/types"
)

var errBadPassword = errors.New("invalid password")

// checkPassword compares against the bcrypt hash when configured, otherwise
// the plain shared password. With neither configured nobody can log in.
func checkPassword(c config.Config, password string) error {
	if c.Auth.AppPasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(c.Auth.AppPasswordHash), []byte(password)) != nil {
			return errBadPassword
		}
		return nil
	}
	if c.Auth.AppPassword == "" {
		return errors.New("no app password configured")
	}
	if subtle.ConstantTimeCompare([]byte(c.Auth.AppPassword), []byte(password)) != 1 {
		return errBadPassword
	}
	return nil
}

func LoginHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		if err := httputil.Parse(r, &req); err != nil {
			httputil.Error(w, err)
			return
		}

		c := svcCtx.Config
		username := strings.TrimSpace(req.Username)
		if username == "" {
			username = c.Chat.Username
		}

		if c.IsDevMode() {
			httputil.OkJSON(w, &types.LoginResponse{Username: username})
			return
		}

		if err := checkPassword(c, req.Password); err != nil {
			logging.Warnf("Login failed for %s: %v", username, err)
			httputil.Unauthorized(w, errBadPassword.Error())
			return
		}

		token, exp, err := middleware.IssueToken(c.Auth.AccessSecret, username, time.Duration(c.Auth.AccessExpire)*time.Second)
		if err != nil {
			httputil.InternalError(w, err.Error())
			return
		}

		logging.Infof("User logged in: %s", username)
		httputil.OkJSON(w, &types.LoginResponse{
			Token:     token,
			ExpiresAt: exp.UnixMilli(),
			Username:  username,
		})
	}
}
