package forms

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-records/internal/models"
	"github.com/diewo77/go-records/validation"
)

const (
	namePattern   = `^[A-Za-z\s\-']+$`
	streetPattern = `^[A-Za-z0-9\s.'#,-]+$`
)

// PersonRules validates the person form.
var PersonRules = validation.Table{
	{Name: "first_name", Rules: []validation.Rule{
		validation.Required("First name is required."),
		validation.Length(2, 50, "First name must be between 2 and 50 characters."),
		validation.Matches(namePattern, "First name cannot contain numbers or special characters."),
	}},
	{Name: "last_name", Rules: []validation.Rule{
		validation.Required("Last name is required."),
		validation.Length(2, 50, "Last name must be between 2 and 50 characters."),
		validation.Matches(namePattern, "Last name cannot contain numbers or special characters."),
	}},
	{Name: "email_address", Rules: []validation.Rule{
		validation.Required("Email address is required."),
		validation.Email("Enter a valid email address."),
		validation.MaxLength(100, "Email must be at most 100 characters."),
	}},
	{Name: "street_address", Rules: []validation.Rule{
		validation.Required("Street address is required."),
		validation.Length(5, 100, "Street address must be between 5 and 100 characters."),
		validation.Matches(streetPattern, "Street address contains invalid characters."),
	}},
	{Name: "city", Rules: []validation.Rule{
		validation.Required("City is required."),
		validation.Length(2, 50, "City must be between 2 and 50 characters."),
		validation.Matches(namePattern, "City cannot contain numbers or special characters."),
	}},
	{Name: "state", Rules: []validation.Rule{
		validation.Required("State is required."),
		validation.MaxLength(2, "State must be 2 characters (e.g., FL)."),
		validation.Matches(`^[A-Za-z]{2}$`, "State must be two letters only (e.g., FL)."),
	}},
	{Name: "zip_code", Rules: []validation.Rule{
		validation.Required("Zip code is required."),
		validation.Matches(`^\d{5}(-\d{4})?$`, "Zip code must be 5 digits or ZIP+4 (e.g., 12345 or 12345-6789)."),
	}},
}

// PersonForm is the posted person form.
type PersonForm struct {
	ID            uint   `form:"id"`
	Version       uint   `form:"version"`
	FirstName     string `form:"first_name"`
	LastName      string `form:"last_name"`
	EmailAddress  string `form:"email_address"`
	StreetAddress string `form:"street_address"`
	City          string `form:"city"`
	State         string `form:"state"`
	ZipCode       string `form:"zip_code"`
	// ClientID is nil when "(none)" is chosen.
	ClientID *uint `form:"client_id"`
}

// DecodePerson reads and normalizes a person form from the request body.
func DecodePerson(r *http.Request) (*PersonForm, error) {
	f := &PersonForm{}
	if err := decode(r, f); err != nil {
		return nil, err
	}
	f.Normalize()
	return f, nil
}

// Normalize trims surrounding whitespace and treats client id 0 as unassigned.
func (f *PersonForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.EmailAddress = strings.TrimSpace(f.EmailAddress)
	f.StreetAddress = strings.TrimSpace(f.StreetAddress)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.ZipCode = strings.TrimSpace(f.ZipCode)
	if f.ClientID != nil && *f.ClientID == 0 {
		f.ClientID = nil
	}
}

func (f *PersonForm) Validate() validation.Violations {
	return PersonRules.Validate(f.value)
}

func (f *PersonForm) value(name string) string {
	switch name {
	case "first_name":
		return f.FirstName
	case "last_name":
		return f.LastName
	case "email_address":
		return f.EmailAddress
	case "street_address":
		return f.StreetAddress
	case "city":
		return f.City
	case "state":
		return f.State
	case "zip_code":
		return f.ZipCode
	}
	return ""
}

// HasClient reports whether id is the chosen client.
func (f *PersonForm) HasClient(id uint) bool {
	return f.ClientID != nil && *f.ClientID == id
}

// ToEntity maps the form onto a person record.
func (f *PersonForm) ToEntity() *models.Person {
	return &models.Person{
		ID:            f.ID,
		Version:       f.Version,
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		EmailAddress:  f.EmailAddress,
		StreetAddress: f.StreetAddress,
		City:          f.City,
		State:         f.State,
		ZipCode:       f.ZipCode,
		ClientID:      f.ClientID,
	}
}

// FromPerson fills a form from a stored person.
func FromPerson(p *models.Person) *PersonForm {
	return &PersonForm{
		ID:            p.ID,
		Version:       p.Version,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		EmailAddress:  p.EmailAddress,
		StreetAddress: p.StreetAddress,
		City:          p.City,
		State:         p.State,
		ZipCode:       p.ZipCode,
		ClientID:      p.ClientID,
	}
}
