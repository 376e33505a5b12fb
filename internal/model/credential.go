package model

import "time"

// Credential is the durable secret for one phone number. At most one
// row exists per phone; only bcrypt hashes are ever stored.
type Credential struct {
	Phone        string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	PasskeyHash  *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PendingOTP is the single outstanding one-time code for a phone
// number. A new send overwrites it; a successful verify deletes it.
type PendingOTP struct {
	Phone     string    `json:"phoneNumber"`
	Code      string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
