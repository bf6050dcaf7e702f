package models

import (
	"time"

	"github.com/google/uuid"
)

// Challenge is the ephemeral state of one verification attempt sequence.
// It lives in Redis under a TTL and is never persisted past login.
type Challenge struct {
	ID           uuid.UUID `json:"id"`
	PhoneNumber  string    `json:"phone_number"`
	CodeHash     string    `json:"code_hash"`
	AttemptsLeft int       `json:"attempts_left"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
