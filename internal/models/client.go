package models

import "time"

// Client represents a company the business works with.
// Clients are never removed from storage: IsDeleted hides them from listings.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version is bumped on every update and guards against lost updates.
	Version uint `gorm:"not null;default:1" json:"version"`

	CompanyName string `gorm:"size:100;not null" json:"company_name"`
	Website     string `gorm:"size:100" json:"website,omitempty"`
	Phone       string `gorm:"size:25" json:"phone,omitempty"`
	Address     string `gorm:"size:200" json:"address,omitempty"`

	IsDeleted bool `gorm:"not null;default:false;index" json:"is_deleted"`
}

// TableName explicitly sets the table name for GORM.
func (Client) TableName() string {
	return "clients"
}
