package entity

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is a business principal. Besides the database key it carries a
// generated, human-shareable merchant UID ("M" + 7 random alphanumerics)
// that also scopes category ownership.
type Merchant struct {
	ID           uuid.UUID  // Unique identifier for the merchant record.
	MerchantUID  string     // Generated shareable identifier, collision-checked at registration.
	BusinessName string     // Display name of the business.
	Address      string     // Postal address of the business.
	Mobile       string     // Unique mobile number, 10-15 digits; usable as a login selector.
	Email        *string    // Optional contact email.
	PasswordHash string     // bcrypt hash of the merchant's password.
	IsActive     bool       // Inactive merchants cannot log in.
	LastLoginAt  *time.Time // Set on every successful login.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
