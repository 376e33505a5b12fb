package auth

import (
	"log/slog"
	"regexp"
	"time"

	"kharcha/internal/store"
)

const (
	// OTPTTL bounds how long a sent code stays redeemable. The system
	// this replaces never expired codes; 5 minutes closes that hole.
	OTPTTL = 5 * time.Minute

	// TokenTTL is the session token lifetime. Tokens are stateless and
	// never revoked server-side; logout is cookie clearing only.
	TokenTTL = 30 * 24 * time.Hour

	bcryptCost = 10
)

var (
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	passkeyPattern = regexp.MustCompile(`^\d{4}$`)
)

// Sender dispatches a message to a phone number over an external
// channel. *sms.Client satisfies it.
type Sender interface {
	Send(to, body string) error
}

// Service drives registration, login, and session token issuance.
type Service struct {
	credentials *store.CredentialStore
	otps        *store.OTPStore
	sender      Sender
	countryCode string
	jwtSecret   []byte
	logger      *slog.Logger
}

func NewService(cs *store.CredentialStore, os *store.OTPStore, sender Sender, countryCode, jwtSecret string, logger *slog.Logger) *Service {
	return &Service{
		credentials: cs,
		otps:        os,
		sender:      sender,
		countryCode: countryCode,
		jwtSecret:   []byte(jwtSecret),
		logger:      logger,
	}
}

// ValidPhone reports whether the identifier is an accepted 10-digit
// phone number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidPasskey reports whether the passkey is exactly 4 digits.
func ValidPasskey(passkey string) bool {
	return passkeyPattern.MatchString(passkey)
}
