package entity

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the three-level category tree.
//
// Level is not stored; it is derived by walking ParentID references to nil.
// Level 0 nodes are system-owned roots, level 1 nodes are subcategories and
// level 2 nodes are the leaf categories merchants manage day to day.
type Category struct {
	ID          uuid.UUID
	Name        string     // Display name, 1-100 characters, unique among active siblings per owner.
	Description string
	Color       string
	Icon        string
	SortOrder   int
	ImageURL    string     // Optional; a URL is synthesized on read when empty.
	OwnerUID    string     // Owning merchant UID; empty means system-owned.
	ParentID    *uuid.UUID // nil marks a root node.
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRoot reports whether the node has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsSystemOwned reports whether the node belongs to the system rather than a merchant.
func (c *Category) IsSystemOwned() bool {
	return c.OwnerUID == ""
}

// OwnedBy reports whether the node belongs to the given merchant UID.
func (c *Category) OwnedBy(merchantUID string) bool {
	return c.OwnerUID != "" && c.OwnerUID == merchantUID
}
