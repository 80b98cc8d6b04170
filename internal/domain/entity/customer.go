package entity

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an end-customer principal. It is created at registration and,
// in the current scope, only its last-login timestamp changes afterwards.
type Customer struct {
	ID           uuid.UUID  // Unique identifier for the customer record.
	Handle       string     // Unique login handle, 3-50 alphanumeric/underscore characters.
	Email        *string    // Optional contact email; unique when present.
	PasswordHash string     // bcrypt hash of the customer's password.
	IsActive     bool       // Inactive customers cannot log in.
	LastLoginAt  *time.Time // Set on every successful login.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
