// Package websocket upgrades authenticated chat connections.
package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/middleware"
	"github.com/neboloop/runbook/internal/realtime"
	"github.com/neboloop/runbook/internal/svc"
)

// NewUpgrader builds an upgrader that accepts the comma separated origins in
// allowed, or only same-host origins when allowed is empty.
func NewUpgrader(allowed string) *websocket.Upgrader {
	var origins []string
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if len(origins) == 0 {
				u, err := url.Parse(origin)
				return err == nil && strings.EqualFold(u.Host, r.Host)
			}
			for _, o := range origins {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ChatSocketHandler serves the chat session of the authenticated user over a
// WebSocket.
func ChatSocketHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	upgrader := NewUpgrader(svcCtx.Config.Security.AllowedOrigins)
	return func(w http.ResponseWriter, r *http.Request) {
		username := middleware.GetUsername(r.Context())
		if username == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		session, err := handler.Session(r.Context(), svcCtx)
		if err != nil {
			handler.WriteError(w, err)
			return
		}

		clientID := r.URL.Query().Get("clientId")
		if clientID == "" {
			clientID = "client-" + uuid.New().String()[:8]
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Errorf("WebSocket upgrade error: %v", err)
			return
		}
		logging.Infof("Serving WebSocket for clientID: %s, user: %s", clientID, username)

		client := realtime.NewClient(conn, session)
		client.Serve()
		logging.Debugf("WebSocket closed for clientID: %s", clientID)
	}
}
