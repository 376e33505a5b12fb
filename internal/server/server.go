package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kharcha/internal/auth"
	"kharcha/internal/config"
	"kharcha/internal/handler"
	"kharcha/internal/middleware"
	"kharcha/internal/store"
)

// India country code, prepended to the 10-digit subscriber number when
// dispatching codes.
const countryCode = "+91"

type Server struct {
	db          *sql.DB
	authSvc     *auth.Service
	authH       *handler.AuthHandler
	expenseH    *handler.ExpenseHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg config.Config, sender auth.Sender, logger *slog.Logger) *Server {
	credentialStore := store.NewCredentialStore(db)
	otpStore := store.NewOTPStore(db)
	expenseStore := store.NewExpenseStore(db, cfg.ExpenseTable())

	authSvc := auth.NewService(
		credentialStore, otpStore, sender,
		countryCode, cfg.JWTSecret,
		logger.With("component", "auth"),
	)

	return &Server{
		db:          db,
		authSvc:     authSvc,
		authH:       handler.NewAuthHandler(authSvc, cfg.Production(), logger.With("component", "auth_handler")),
		expenseH:    handler.NewExpenseHandler(expenseStore, logger.With("component", "expense_handler")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// AuthService returns the auth service for cleanup tasks.
func (s *Server) AuthService() *auth.Service {
	return s.authSvc
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes. OTP dispatch costs money per message, so its limit
	// is tighter than login's.
	outerMux.HandleFunc("POST /auth/send-otp", s.rateLimitedHandler(s.authH.SendOTP, 5))
	outerMux.HandleFunc("POST /auth/verify-otp", s.rateLimitedHandler(s.authH.VerifyOTP, 10))
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login, 10))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Everything else goes through the page gate: the fixed public
	// pages bypass auth, the rest requires the session cookie.
	gatedMux := http.NewServeMux()
	s.registerPublicPages(gatedMux)
	s.registerProtectedRoutes(gatedMux)

	authMiddleware := middleware.RequireAuth(s.authSvc)
	outerMux.Handle("/", middleware.PageGate(authMiddleware)(gatedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc, limit int) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, limit, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

// registerPublicPages mounts the pages the gate lets through without a
// session. The frontend is served separately; these answer with a
// plain page stub so browsers never loop through /login.
func (s *Server) registerPublicPages(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", servePage("Kharcha"))
	mux.HandleFunc("GET /login", servePage("Login"))
	mux.HandleFunc("GET /register", servePage("Register"))
}

func servePage(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><title>%s</title><h1>%s</h1>\n", title, title)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/setup-passkey", s.authH.SetupPasskey)
	mux.HandleFunc("POST /auth/logout", s.authH.Logout)

	mux.HandleFunc("POST /api/expenses", s.expenseH.Create)
	mux.HandleFunc("GET /api/expenses", s.expenseH.List)
	mux.HandleFunc("GET /api/expenses/summary", s.expenseH.Summary)
	mux.HandleFunc("PUT /api/expenses/{id}", s.expenseH.Update)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.expenseH.Delete)
}
