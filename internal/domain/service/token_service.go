package service

import (
	"time"

	"github.com/statech108/backend/internal/domain/entity"

	"github.com/google/uuid"
)

// Claims is the verified content of an access credential.
type Claims struct {
	Subject     uuid.UUID   // Principal record ID.
	Role        entity.Role // Principal domain the credential was issued for.
	DisplayName string      // Handle for customers, business name for merchants.
	MerchantUID string      // Shareable merchant identifier; empty for customers.
	ExpiresAt   time.Time
}

// TokenService defines the interface for issuing and verifying access credentials.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue creates a signed, time-bound credential for the given claims.
	Issue(claims Claims) (string, error)

	// Verify checks signature, structure and expiry and returns the claims.
	Verify(token string) (*Claims, error)

	// ExtractExpiry decodes the expiry claim WITHOUT verifying the signature.
	// Callers may use it only on tokens they already trust, to cache a local
	// expiry; it must never feed a trust decision. A token without an expiry
	// claim yields a zero time.
	ExtractExpiry(token string) (time.Time, error)

	// TokenTTL returns the configured credential lifetime.
	TokenTTL() time.Duration
}
