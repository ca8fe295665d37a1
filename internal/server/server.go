// Package server wires the HTTP and WebSocket API onto a chi router.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/neboloop/runbook/internal/handler"
	"github.com/neboloop/runbook/internal/handler/auth"
	"github.com/neboloop/runbook/internal/handler/chat"
	"github.com/neboloop/runbook/internal/handler/document"
	"github.com/neboloop/runbook/internal/handler/runbook"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/middleware"
	"github.com/neboloop/runbook/internal/svc"
	"github.com/neboloop/runbook/internal/websocket"
)

// Options tunes the server.
type Options struct {
	// Quiet disables request logging.
	Quiet bool
}

// NewRouter builds the application's HTTP handler.
func NewRouter(svcCtx *svc.ServiceContext, opts Options) http.Handler {
	c := svcCtx.Config
	r := chi.NewRouter()

	if !opts.Quiet {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(corsMiddleware(c.Security.AllowedOrigins))

	r.Get("/health", handler.HealthCheckHandler(svcCtx))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(securityHeadersMiddleware)
		if c.IsRateLimitEnabled() {
			limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
				Requests: c.Security.RateLimitRequests,
				Interval: time.Duration(c.Security.RateLimitInterval) * time.Second,
				Burst:    c.Security.RateLimitBurst,
			})
			r.Use(limiter.Handler)
		}

		registerAuthRoutes(r, svcCtx)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(middleware.AuthConfig{
				Secret:  c.Auth.AccessSecret,
				DevMode: c.IsDevMode(),
				DevUser: c.Chat.Username,
			}))
			registerProtectedRoutes(r, svcCtx)
		})
	})

	return r
}

// registerAuthRoutes registers the routes reachable without a session.
func registerAuthRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Post("/auth/login", auth.LoginHandler(svcCtx))
	r.Post("/auth/logout", auth.LogoutHandler(svcCtx))
	r.Get("/auth/session", auth.SessionHandler(svcCtx))
}

func registerProtectedRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	// Chat
	r.Get("/chat/state", chat.GetStateHandler(svcCtx))
	r.Put("/chat/prompt", chat.SetPromptHandler(svcCtx))
	r.Post("/chat/submit", chat.SubmitHandler(svcCtx))
	r.Get("/chat/search", chat.SearchHandler(svcCtx))
	r.Get("/chat/ws", websocket.ChatSocketHandler(svcCtx))

	// Runbooks
	r.Get("/runbooks", runbook.ListRunbooksHandler(svcCtx))
	r.Post("/runbooks", runbook.CreateRunbookHandler(svcCtx))
	r.Post("/runbooks/{id}/activate", runbook.ActivateRunbookHandler(svcCtx))
	r.Get("/runbooks/{id}/interactions", runbook.ListInteractionsHandler(svcCtx))
	r.Post("/runbooks/{id}/export", runbook.ExportRunbookHandler(svcCtx))

	// Documents
	r.Get("/documents", document.ListDocumentsHandler(svcCtx))
	r.Post("/documents", document.AddDocumentHandler(svcCtx))
	r.Get("/documents/{id}", document.GetDocumentHandler(svcCtx))
	r.Delete("/documents/{id}", document.DeleteDocumentHandler(svcCtx))
	r.Post("/documents/{id}/parse", document.ParseDocumentHandler(svcCtx))
}

// Run serves the API on the configured address until ctx is cancelled, then
// shuts down gracefully.
func Run(ctx context.Context, svcCtx *svc.ServiceContext, opts Options) error {
	// ReadTimeout/WriteTimeout are left unset; they would cut hijacked
	// WebSocket connections. Those keep alive with ping/pong instead.
	httpServer := &http.Server{
		Addr:              svcCtx.Config.Addr(),
		Handler:           NewRouter(svcCtx, opts),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("Server ready at http://%s", displayAddr(svcCtx.Config.Addr()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Infof("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// securityHeadersMiddleware adds security headers to API responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows the comma separated origins in allowed. With none
// configured no CORS headers are sent and browsers keep same-origin rules.
func corsMiddleware(allowed string) func(http.Handler) http.Handler {
	origins := map[string]bool{}
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins[strings.ToLower(o)] = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (origins["*"] || origins[strings.ToLower(origin)]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.DevUserHeader)
				w.Header().Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
