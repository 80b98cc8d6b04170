package model

import (
	"time"

	"github.com/google/uuid"
)

// MerchantModel mirrors the 'merchants' table. MerchantUID is the generated
// shareable identifier; Mobile doubles as a login selector.
type MerchantModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MerchantUID  string    `gorm:"type:varchar(8);uniqueIndex;not null"`
	BusinessName string    `gorm:"type:varchar(255);not null"`
	Address      string    `gorm:"type:text;not null"`
	Mobile       string    `gorm:"type:varchar(15);uniqueIndex;not null"`
	Email        *string   `gorm:"type:varchar(255)"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (MerchantModel) TableName() string {
	return "merchants"
}
