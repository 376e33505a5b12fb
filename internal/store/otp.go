package store

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kharcha/internal/model"
)

// Consume failure modes. The HTTP boundary collapses mismatch and
// no-pending into one message so the API does not reveal which phone
// numbers have codes outstanding.
var (
	ErrNoPendingOTP = errors.New("no pending otp")
	ErrCodeMismatch = errors.New("otp code mismatch")
	ErrCodeExpired  = errors.New("otp code expired")
)

type OTPStore struct {
	db *sql.DB
}

func NewOTPStore(db *sql.DB) *OTPStore {
	return &OTPStore{db: db}
}

func scanPendingOTP(scanner interface{ Scan(...any) error }) (*model.PendingOTP, error) {
	var p model.PendingOTP
	err := scanner.Scan(&p.Phone, &p.Code, &p.CreatedAt, &p.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const pendingOTPCols = `phone, code, created_at, expires_at`

// Put stores the pending code for a phone number, overwriting any
// earlier code and resetting the expiry window.
func (s *OTPStore) Put(phone, code string, ttl time.Duration) (*model.PendingOTP, error) {
	expiresAt := time.Now().UTC().Add(ttl)
	_, err := s.db.Exec(
		`INSERT INTO pending_otps (phone, code, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(phone) DO UPDATE SET code = excluded.code, created_at = datetime('now'), expires_at = excluded.expires_at`,
		phone, code, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("put pending otp: %w", err)
	}
	return s.Get(phone)
}

// Get returns the pending code for a phone number, or nil if none exists.
func (s *OTPStore) Get(phone string) (*model.PendingOTP, error) {
	row := s.db.QueryRow(`SELECT `+pendingOTPCols+` FROM pending_otps WHERE phone = ?`, phone)
	p, err := scanPendingOTP(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending otp: %w", err)
	}
	return p, nil
}

// Consume validates the submitted code against the pending record and
// deletes it on success, all inside one transaction so a concurrent
// verify for the same phone cannot redeem the same code twice.
// On mismatch the pending record is left intact.
func (s *OTPStore) Consume(phone, code string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin consume: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+pendingOTPCols+` FROM pending_otps WHERE phone = ?`, phone)
	p, err := scanPendingOTP(row)
	if err == sql.ErrNoRows {
		return ErrNoPendingOTP
	}
	if err != nil {
		return fmt.Errorf("load pending otp: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(p.Code), []byte(code)) != 1 {
		return ErrCodeMismatch
	}

	if time.Now().UTC().After(p.ExpiresAt) {
		// Expired codes are dead either way; drop the row.
		if _, err := tx.Exec(`DELETE FROM pending_otps WHERE phone = ?`, phone); err != nil {
			return fmt.Errorf("delete expired otp: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit expired otp delete: %w", err)
		}
		return ErrCodeExpired
	}

	if _, err := tx.Exec(`DELETE FROM pending_otps WHERE phone = ?`, phone); err != nil {
		return fmt.Errorf("consume pending otp: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit consume: %w", err)
	}
	return nil
}

// Delete removes the pending code for a phone number, if any.
func (s *OTPStore) Delete(phone string) error {
	_, err := s.db.Exec(`DELETE FROM pending_otps WHERE phone = ?`, phone)
	if err != nil {
		return fmt.Errorf("delete pending otp: %w", err)
	}
	return nil
}

// DeleteExpired removes all expired pending codes and reports how many.
func (s *OTPStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM pending_otps WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
