// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/statech108/backend/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCustomerNotFound is a domain-specific error returned when a customer is not found.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository defines the standard operations for customer persistence.
type CustomerRepository interface {
	// Create persists a new customer entity to the storage.
	Create(ctx context.Context, customer *entity.Customer) error

	// FindByHandle retrieves a single customer by their unique handle.
	FindByHandle(ctx context.Context, handle string) (*entity.Customer, error)

	// ExistsByEmail reports whether an active customer already uses the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateLastLogin records a successful login timestamp.
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
