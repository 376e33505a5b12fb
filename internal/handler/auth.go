package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"kharcha/internal/auth"
	"kharcha/internal/middleware"
)

const cookieMaxAge = 30 * 24 * 60 * 60 // 30 days

type AuthHandler struct {
	svc        *auth.Service
	production bool
	logger     *slog.Logger
}

func NewAuthHandler(svc *auth.Service, production bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, production: production, logger: logger}
}

// setSessionCookie attaches the session token. Script-inaccessible,
// HTTPS-only in production, never sent cross-site, 30-day lifetime.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteStrictMode,
	})
}

type sendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
		return
	}
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	err := h.svc.RequestOTP(r.Context(), req.PhoneNumber)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully"})
	case errors.Is(err, auth.ErrInvalidPhone):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid phone number"})
	default:
		// Dispatch failures already rolled back the pending code, so
		// the caller can simply retry.
		h.logger.Error("send otp", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to send OTP"})
	}
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTP         string `json:"otp"`
	Password    string `json:"password"`
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
		return
	}
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.OTP = strings.TrimSpace(req.OTP)

	err := h.svc.VerifyAndRegister(r.Context(), req.PhoneNumber, req.OTP, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Registration successful"})
	case errors.Is(err, auth.ErrInvalidPhone):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid phone number"})
	case errors.Is(err, auth.ErrInvalidCode):
		// Covers wrong code and no pending code alike.
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid OTP"})
	case errors.Is(err, auth.ErrOTPExpired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "OTP expired"})
	case errors.Is(err, auth.ErrInvalidPassword):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Password is required"})
	default:
		h.logger.Error("verify otp", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to verify OTP"})
	}
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	Passkey     string `json:"passkey"`
}

// Login authenticates with the password, or with the 4-digit passkey
// when the request carries one instead. Unknown numbers and wrong
// secrets produce the same response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
		return
	}
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	var token string
	var err error
	if req.Passkey != "" {
		token, err = h.svc.LoginWithPasskey(r.Context(), req.PhoneNumber, req.Passkey)
	} else {
		token, err = h.svc.Login(r.Context(), req.PhoneNumber, req.Password)
	}

	switch {
	case err == nil:
		h.setSessionCookie(w, token)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	default:
		h.logger.Error("login", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Login failed"})
	}
}

type setupPasskeyRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Passkey     string `json:"passkey"`
}

// SetupPasskey runs behind RequireAuth: only the authenticated owner of
// a credential may attach a passkey to it.
func (h *AuthHandler) SetupPasskey(w http.ResponseWriter, r *http.Request) {
	var req setupPasskeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
		return
	}
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if auth.Phone(r.Context()) != req.PhoneNumber {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	token, err := h.svc.SetupPasskey(r.Context(), req.PhoneNumber, req.Passkey)
	switch {
	case err == nil:
		h.setSessionCookie(w, token)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Passkey set successfully"})
	case errors.Is(err, auth.ErrInvalidPhone), errors.Is(err, auth.ErrInvalidPasskey):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid phone number or passkey"})
	default:
		h.logger.Error("setup passkey", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to set up passkey"})
	}
}

// Logout clears the session cookie. Tokens are stateless; there is
// nothing server-side to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
