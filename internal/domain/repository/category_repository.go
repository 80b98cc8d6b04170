package repository

import (
	"context"
	"errors"

	"github.com/statech108/backend/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrCategoryNotFound is a domain-specific error returned when a category is not found.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository defines the standard operations for category tree persistence.
type CategoryRepository interface {
	// Create persists a new category node.
	Create(ctx context.Context, category *entity.Category) error

	// FindByID retrieves a node by ID regardless of its active flag.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)

	// ListRoots retrieves all active root nodes ordered by sort order.
	ListRoots(ctx context.Context) ([]*entity.Category, error)

	// ListChildren retrieves the active children of a node ordered by sort order.
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*entity.Category, error)

	// ListByOwner retrieves all active nodes owned by the merchant ordered by sort order.
	ListByOwner(ctx context.Context, ownerUID string) ([]*entity.Category, error)

	// CountActiveChildren returns the number of active children of a node.
	CountActiveChildren(ctx context.Context, parentID uuid.UUID) (int64, error)

	// HasActiveChildren reports, per given node ID, whether any active child exists.
	HasActiveChildren(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)

	// ExistsActiveSibling reports whether an active node with the same name
	// already exists under the parent for the owner, excluding excludeID when
	// non-nil (so a rename does not collide with the node itself).
	ExistsActiveSibling(ctx context.Context, name string, parentID *uuid.UUID, ownerUID string, excludeID *uuid.UUID) (bool, error)

	// Update persists all mutable fields of the node.
	Update(ctx context.Context, category *entity.Category) error

	// Delete permanently removes the node. Records referencing it are removed
	// by the storage layer's cascade rules.
	Delete(ctx context.Context, id uuid.UUID) error
}
