package repository

import (
	"context"
	"errors"
	"time"

	"github.com/statech108/backend/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrMerchantNotFound is a domain-specific error returned when a merchant is not found.
var ErrMerchantNotFound = errors.New("merchant not found")

// MerchantRepository defines the standard operations for merchant persistence.
type MerchantRepository interface {
	// Create persists a new merchant entity to the storage.
	Create(ctx context.Context, merchant *entity.Merchant) error

	// FindByUID retrieves a single merchant by their generated merchant UID.
	FindByUID(ctx context.Context, merchantUID string) (*entity.Merchant, error)

	// FindByMobile retrieves a single merchant by their mobile number.
	FindByMobile(ctx context.Context, mobile string) (*entity.Merchant, error)

	// ExistsByUID reports whether the merchant UID is already allocated.
	// Used by the registration loop to collision-check generated identifiers.
	ExistsByUID(ctx context.Context, merchantUID string) (bool, error)

	// ExistsByMobile reports whether a merchant already uses the mobile number.
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)

	// UpdateLastLogin records a successful login timestamp.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
