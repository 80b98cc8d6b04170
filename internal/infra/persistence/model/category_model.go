package model

import (
	"time"

	"github.com/google/uuid"
)

// CategoryModel mirrors the 'categories' table. ParentID is NULL for root
// nodes; deleting a parent cascades to its descendants at the storage layer.
// OwnerUID is empty for system-owned nodes.
type CategoryModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Description string     `gorm:"type:text"`
	Color       string     `gorm:"type:varchar(20)"`
	Icon        string     `gorm:"type:varchar(100)"`
	SortOrder   int        `gorm:"not null;default:0"`
	ImageURL    string     `gorm:"type:varchar(500)"`
	OwnerUID    string     `gorm:"type:varchar(8);index;not null;default:''"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	IsActive    bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Parent   *CategoryModel  `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Children []CategoryModel `gorm:"foreignKey:ParentID"`
}

// TableName explicitly sets the table name for GORM.
func (CategoryModel) TableName() string {
	return "categories"
}
