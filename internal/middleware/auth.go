package middleware

import (
	"net/http"
	"strings"

	"kharcha/internal/auth"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "authToken"

// TokenVerifier validates a session token and returns its subject
// phone number. *auth.Service satisfies it.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireAuth validates the authToken cookie on every request and
// injects the subject into the request context. Authorization happens
// here and again inside each mutating handler (owner checks); there is
// deliberately no path allow-list shortcut for API routes.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				rejectUnauthenticated(w, r)
				return
			}

			phone, err := verifier.VerifyToken(cookie.Value)
			if err != nil {
				rejectUnauthenticated(w, r)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{Phone: phone})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// publicPages are reachable without a session. Exact paths only; API
// routes never appear here, each of those sits behind RequireAuth.
var publicPages = map[string]bool{
	"/":         true,
	"/login":    true,
	"/register": true,
}

// PageGate applies the auth requirement to every request except the
// fixed public pages, so /login can never redirect to itself.
func PageGate(requireAuth func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		gated := requireAuth(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPages[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			gated.ServeHTTP(w, r)
		})
	}
}

// rejectUnauthenticated answers API requests with 401 JSON and page
// requests with a redirect to /login.
func rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/auth/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
