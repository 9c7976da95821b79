// Package http exposes the JSON API.
package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"moneta/internal/auth"
	"moneta/internal/middleware/ratelimit"
	"moneta/internal/middleware/security"
	"moneta/internal/middleware/trace"
	"moneta/internal/services"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Pinger reports backend connectivity for the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the server needs.
type Deps struct {
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Reports      *services.ReportService
	CSV          *services.CSVService
	Auth         *auth.Manager
	DB           Pinger

	// AuthRequestsPerMinute throttles register and login per client IP.
	AuthRequestsPerMinute int
}

type Server struct {
	http.Server
	deps        Deps
	authLimiter *ratelimit.Limiter
}

func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		deps: deps,
		authLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.AuthRequestsPerMinute,
		}),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	limited := s.authLimiter.Middleware(trace.ExtractClientIP, onRateLimited)
	mux.Handle("POST /auth/register", limited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /auth/login", limited(http.HandlerFunc(s.handleLogin)))

	mux.HandleFunc("GET /categories", s.requireAuth(s.handleListCategories))
	mux.HandleFunc("POST /categories", s.requireAuth(s.handleCreateCategory))
	mux.HandleFunc("GET /categories/{id}", s.requireAuth(s.handleGetCategory))
	mux.HandleFunc("PUT /categories/{id}", s.requireAuth(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.requireAuth(s.handleDeleteCategory))

	mux.HandleFunc("GET /transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions/export", s.requireAuth(s.handleExport))
	mux.HandleFunc("POST /transactions/import", s.requireAuth(s.handleImport))
	mux.HandleFunc("GET /transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.HandleFunc("GET /reports/monthly", s.requireAuth(s.handleMonthlyReport))
	mux.HandleFunc("GET /reports/monthly/chart", s.requireAuth(s.handleMonthlyChart))

	mux.HandleFunc("DELETE /account", s.requireAuth(s.handleDeleteAccount))

	traceMW := trace.NewMiddleware(trace.ExtractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:           addr,
		Handler:        traceMW.Middleware(headersMW.Middleware(mux)),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

// Shutdown drains in-flight requests and stops background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.authLimiter.Stop()
	return s.Server.Shutdown(ctx)
}

// requireAuth validates the bearer token and stores the user ID in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}

		userID, err := s.deps.Auth.ParseToken(strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// currentUserID returns the authenticated user from the request context.
// Handlers behind requireAuth can rely on it being set.
func currentUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

func onRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down", nil)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "not_ready", "database unavailable", nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
