package auth

import "errors"

// Failure taxonomy for the registration and login flows. Handlers map
// these to fixed status codes and fixed user-facing messages; anything
// not listed here is an internal error and surfaces as a generic 500.
var (
	// ErrInvalidPhone: the identifier is not a 10-digit number. 400.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidPasskey: the passkey is not exactly 4 digits. 400.
	ErrInvalidPasskey = errors.New("invalid passkey")

	// ErrInvalidPassword: the registration password is missing. 400.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidCode covers both a wrong code and no pending code for
	// the phone; callers must not learn which. 400 "Invalid OTP".
	ErrInvalidCode = errors.New("invalid otp code")

	// ErrOTPExpired: the pending code's window has passed. 400.
	ErrOTPExpired = errors.New("otp expired")

	// ErrDispatch: the SMS provider rejected the send. Retryable by the
	// caller; the pending code has been rolled back. 500.
	ErrDispatch = errors.New("otp dispatch failed")

	// ErrInvalidCredentials covers unknown phone and wrong secret
	// alike, so login cannot be used to enumerate accounts. 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound: no credential exists for the phone. Only returned by
	// operations that already require an authenticated session for that
	// phone, so it leaks nothing.
	ErrNotFound = errors.New("credential not found")
)
