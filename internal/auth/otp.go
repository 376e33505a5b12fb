package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/sethvargo/go-retry"
)

// generateCode returns a 6-digit numeric code (100000–999999).
func generateCode() (string, error) {
	// Range: 100000 to 999999 (900000 values)
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// RequestOTP generates a fresh code for the phone number, stores it as
// the single pending code (overwriting any earlier one), and dispatches
// it by SMS. If dispatch fails after retries the pending code is rolled
// back, so a code the user never received can never be redeemed; the
// caller re-requests a new one.
func (s *Service) RequestOTP(ctx context.Context, phone string) error {
	if !ValidPhone(phone) {
		return ErrInvalidPhone
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	if _, err := s.otps.Put(phone, code, OTPTTL); err != nil {
		return fmt.Errorf("store pending otp: %w", err)
	}

	to := s.countryCode + phone
	body := fmt.Sprintf("Your OTP is: %s", code)

	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.sender.Send(to, body); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("otp dispatch failed", "error", err)
		if delErr := s.otps.Delete(phone); delErr != nil {
			s.logger.Error("otp rollback failed", "error", delErr)
		}
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	s.logger.Info("otp dispatched", "phone", phone)
	return nil
}

// SweepExpiredOTPs deletes expired pending codes; run periodically.
func (s *Service) SweepExpiredOTPs() {
	n, err := s.otps.DeleteExpired()
	if err != nil {
		s.logger.Error("otp sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("expired otps removed", "count", n)
	}
}
