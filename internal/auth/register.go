package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"kharcha/internal/store"
)

// VerifyAndRegister drives a phone number from pending-OTP to
// registered: the submitted code is checked and consumed atomically,
// then the password is hashed and written as the credential. A mismatch
// leaves the pending code intact so the caller may retry with the
// correct one; a missing pending record is reported as ErrInvalidCode
// so the API does not reveal which numbers have codes outstanding.
func (s *Service) VerifyAndRegister(ctx context.Context, phone, code, password string) error {
	if !ValidPhone(phone) {
		return ErrInvalidPhone
	}
	if password == "" {
		return ErrInvalidPassword
	}

	switch err := s.otps.Consume(phone, code); {
	case err == nil:
	case errors.Is(err, store.ErrNoPendingOTP), errors.Is(err, store.ErrCodeMismatch):
		return ErrInvalidCode
	case errors.Is(err, store.ErrCodeExpired):
		return ErrOTPExpired
	default:
		return fmt.Errorf("consume otp: %w", err)
	}

	// The code is burned at this point. If the credential write fails
	// the caller must request a fresh OTP; a code never outlives one
	// successful match.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.credentials.Upsert(phone, string(hash)); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	s.logger.Info("registration complete", "phone", phone)
	return nil
}
