package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CategoryView is the read model of a category node.
type CategoryView struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	SortOrder   int        `json:"sort_order"`
	ImageURL    string     `json:"image_url,omitempty"`
	OwnerUID    string     `json:"owner_uid,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	HasChildren *bool      `json:"has_children,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CategoryTreeNode is a category with its immediate children, used by the
// available-parents listing.
type CategoryTreeNode struct {
	CategoryView
	Children []CategoryView `json:"children"`
}

// ChildrenOutput is the result of listing a node's children. For leaf nodes
// the listing collapses to the node itself.
type ChildrenOutput struct {
	Parent   *CategoryView  `json:"parent,omitempty"`
	Children []CategoryView `json:"children,omitempty"`
	Leaf     *CategoryView  `json:"leaf,omitempty"`
}

// CreateCategoryInput defines the data required to create a category node.
type CreateCategoryInput struct {
	Name        string
	Description string
	Color       string
	Icon        string
	SortOrder   int
	ImageURL    string
	ParentID    *uuid.UUID
}

// UpdateCategoryInput is a field-presence-driven patch: only non-nil fields
// are applied, absent fields are never defaulted.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	SortOrder   *int
	ImageURL    *string
	ParentID    *uuid.UUID
}

// Empty reports whether the patch carries no field at all.
func (p *UpdateCategoryInput) Empty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.Color == nil &&
		p.Icon == nil &&
		p.SortOrder == nil &&
		p.ImageURL == nil &&
		p.ParentID == nil
}

// DeleteCategoryOutput summarizes a successful deletion.
type DeleteCategoryOutput struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CategoryUsecase defines the interface for category hierarchy operations.
type CategoryUsecase interface {
	// ListRoots returns all active root categories with a derived has_children flag.
	ListRoots(ctx context.Context) ([]CategoryView, error)

	// ListChildren returns the active children of a node, or the node itself
	// as a single-leaf payload when it has none.
	ListChildren(ctx context.Context, nodeID uuid.UUID) (*ChildrenOutput, error)

	// ListOwn returns the merchant's own top-level categories.
	ListOwn(ctx context.Context, merchantUID string) ([]CategoryView, error)

	// ListAvailableParents returns the subcategory tree a merchant may attach
	// leaf categories to.
	ListAvailableParents(ctx context.Context, merchantUID string) ([]CategoryTreeNode, error)

	// Create adds a node owned by the merchant.
	Create(ctx context.Context, merchantUID string, input *CreateCategoryInput) (*CategoryView, error)

	// Update applies a partial update to a leaf node owned by the merchant.
	Update(ctx context.Context, merchantUID string, nodeID uuid.UUID, patch *UpdateCategoryInput) (*CategoryView, error)

	// Delete permanently removes a childless leaf node owned by the merchant.
	Delete(ctx context.Context, merchantUID string, nodeID uuid.UUID) (*DeleteCategoryOutput, error)

	// Level derives the node's depth by walking parent references.
	Level(ctx context.Context, nodeID uuid.UUID) (int, error)
}
