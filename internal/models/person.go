package models

import "time"

// Person is a contact. A person may be linked to at most one client.
type Person struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   uint      `gorm:"not null;default:1" json:"version"`

	FirstName     string `gorm:"size:50;not null" json:"first_name"`
	LastName      string `gorm:"size:50;not null" json:"last_name"`
	EmailAddress  string `gorm:"size:100;not null" json:"email_address"`
	StreetAddress string `gorm:"size:100;not null" json:"street_address"`
	City          string `gorm:"size:50;not null" json:"city"`
	State         string `gorm:"size:2;not null" json:"state"`
	ZipCode       string `gorm:"size:10;not null" json:"zip_code"`

	// ClientID is a weak reference: nil means unassigned. Deleting the client
	// leaves the person untouched.
	ClientID *uint   `gorm:"index" json:"client_id,omitempty"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IsDeleted bool `gorm:"not null;default:false;index" json:"is_deleted"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// FullName returns "First Last".
func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// AssignedTo reports whether the person currently points at clientID.
func (p *Person) AssignedTo(clientID uint) bool {
	return p.ClientID != nil && *p.ClientID == clientID
}

// ClientName returns the linked client's company name, or "(none)" when the
// person is unassigned or the client was not preloaded.
func (p *Person) ClientName() string {
	if p.ClientID == nil || p.Client == nil {
		return "(none)"
	}
	return p.Client.CompanyName
}
