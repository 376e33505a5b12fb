package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kharcha/internal/auth"
)

// fakeVerifier accepts exactly one token value.
type fakeVerifier struct {
	token string
	phone string
}

func (f fakeVerifier) VerifyToken(token string) (string, error) {
	if token != f.token {
		return "", fmt.Errorf("invalid token")
	}
	return f.phone, nil
}

func TestRequireAuthNoCookieRedirectsPages(t *testing.T) {
	handler := RequireAuth(fakeVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/expenses", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("location = %q, want /login", loc)
	}
}

func TestRequireAuthNoCookieAPIGets401(t *testing.T) {
	handler := RequireAuth(fakeVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/expenses", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthBadTokenRejected(t *testing.T) {
	handler := RequireAuth(fakeVerifier{token: "good", phone: "9876543210"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/expenses", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestPageGatePublicPathsSkipAuth(t *testing.T) {
	handler := PageGate(RequireAuth(fakeVerifier{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/", "/login", "/register"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want %d", path, rec.Code, http.StatusOK)
		}
		if loc := rec.Header().Get("Location"); loc != "" {
			t.Errorf("GET %s: unexpected redirect to %q", path, loc)
		}
	}
}

func TestPageGateOtherPathsStillGated(t *testing.T) {
	handler := PageGate(RequireAuth(fakeVerifier{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/settings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	req = httptest.NewRequest("GET", "/api/expenses", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidTokenInjectsIdentity(t *testing.T) {
	var gotPhone string
	handler := RequireAuth(fakeVerifier{token: "good", phone: "9876543210"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPhone = auth.Phone(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/expenses", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotPhone != "9876543210" {
		t.Errorf("phone = %q, want 9876543210", gotPhone)
	}
}
