package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "kharcha"

// dummyHash gives failed lookups a comparison to run against, so an
// unknown phone number costs about as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("kharcha.dummy"), bcryptCost)

// Login checks the password against the stored hash and mints a session
// token. Unknown phone numbers and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, phone, password string) (string, error) {
	cred, err := s.credentials.GetByPhone(phone)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if cred == nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(phone)
}

// LoginWithPasskey checks the 4-digit passkey instead of the password.
// A credential without a passkey set fails like any other bad secret.
func (s *Service) LoginWithPasskey(ctx context.Context, phone, passkey string) (string, error) {
	cred, err := s.credentials.GetByPhone(phone)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if cred == nil || cred.PasskeyHash == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*cred.PasskeyHash), []byte(passkey)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(phone)
}

// SetupPasskey merge-writes a bcrypt-hashed 4-digit passkey onto an
// existing credential and returns a fresh session token. Callers must
// already have verified that the session subject matches phone.
func (s *Service) SetupPasskey(ctx context.Context, phone, passkey string) (string, error) {
	if !ValidPhone(phone) {
		return "", ErrInvalidPhone
	}
	if !ValidPasskey(passkey) {
		return "", ErrInvalidPasskey
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passkey), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash passkey: %w", err)
	}

	if err := s.credentials.SetPasskey(phone, string(hash)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("set passkey: %w", err)
	}

	s.logger.Info("passkey configured", "phone", phone)
	return s.IssueToken(phone)
}

// IssueToken mints a signed HS256 session token with a 30-day expiry
// and the phone number as subject.
func (s *Service) IssueToken(phone string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   phone,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature, issuer, and expiry, and returns the
// subject phone number.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}
	return claims.Subject, nil
}
