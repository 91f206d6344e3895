package models

import (
	"time"

	"github.com/google/uuid"
)

// User owns connections, manual entries and every ingested row. PasswordHash
// is the bcrypt hash, never the password.
type User struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
