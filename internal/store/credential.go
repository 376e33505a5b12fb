package store

import (
	"database/sql"
	"fmt"

	"kharcha/internal/model"
)

type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func scanCredential(scanner interface{ Scan(...any) error }) (*model.Credential, error) {
	var c model.Credential
	var passkey sql.NullString

	err := scanner.Scan(&c.Phone, &c.PasswordHash, &passkey, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if passkey.Valid {
		c.PasskeyHash = &passkey.String
	}
	return &c, nil
}

const credentialCols = `phone, password_hash, passkey_hash, created_at, updated_at`

// Upsert writes the password hash for a phone number, creating the
// credential if it does not exist. An existing passkey hash survives.
func (s *CredentialStore) Upsert(phone, passwordHash string) (*model.Credential, error) {
	_, err := s.db.Exec(
		`INSERT INTO credentials (phone, password_hash) VALUES (?, ?)
		 ON CONFLICT(phone) DO UPDATE SET password_hash = excluded.password_hash, updated_at = datetime('now')`,
		phone, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert credential: %w", err)
	}
	return s.GetByPhone(phone)
}

// SetPasskey merge-writes the passkey hash for an existing credential.
func (s *CredentialStore) SetPasskey(phone, passkeyHash string) error {
	result, err := s.db.Exec(
		`UPDATE credentials SET passkey_hash = ?, updated_at = datetime('now') WHERE phone = ?`,
		passkeyHash, phone,
	)
	if err != nil {
		return fmt.Errorf("set passkey: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByPhone returns the credential for a phone number, or nil if none exists.
func (s *CredentialStore) GetByPhone(phone string) (*model.Credential, error) {
	row := s.db.QueryRow(`SELECT `+credentialCols+` FROM credentials WHERE phone = ?`, phone)
	c, err := scanCredential(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return c, nil
}

func (s *CredentialStore) Delete(phone string) error {
	_, err := s.db.Exec(`DELETE FROM credentials WHERE phone = ?`, phone)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
