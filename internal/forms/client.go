package forms

import (
	"net/http"
	"slices"
	"strings"

	"github.com/diewo77/go-records/internal/models"
	"github.com/diewo77/go-records/validation"
)

const phonePattern = `^\+?[0-9\s().\-]+((x|ext\.?)\s?[0-9]+)?$`

// ClientRules validates the client form.
var ClientRules = validation.Table{
	{Name: "company_name", Rules: []validation.Rule{
		validation.Required("Company name is required."),
		validation.Length(2, 100, "Company name must be between 2 and 100 characters."),
	}},
	{Name: "website", Rules: validation.Optional(
		validation.MaxLength(100, "Website must be at most 100 characters."),
		validation.URL("Please enter a valid URL (include http:// or https://)."),
	)},
	{Name: "phone", Rules: validation.Optional(
		validation.Length(10, 25, validation.LengthMessage("Phone", 10, 25)),
		validation.Matches(phonePattern, "Please enter a valid phone number."),
	)},
	{Name: "address", Rules: validation.Optional(
		validation.Length(5, 200, "Address must be at least 5 characters."),
	)},
}

// ClientForm is the posted client form.
type ClientForm struct {
	ID          uint   `form:"id"`
	Version     uint   `form:"version"`
	CompanyName string `form:"company_name"`
	Website     string `form:"website"`
	Phone       string `form:"phone"`
	Address     string `form:"address"`
	// SelectedPeople holds the ids of the checked contacts. Absent means none.
	SelectedPeople []uint `form:"selected_people"`
}

// DecodeClient reads and normalizes a client form from the request body.
func DecodeClient(r *http.Request) (*ClientForm, error) {
	f := &ClientForm{}
	if err := decode(r, f); err != nil {
		return nil, err
	}
	f.Normalize()
	return f, nil
}

// Normalize trims surrounding whitespace.
func (f *ClientForm) Normalize() {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.Website = strings.TrimSpace(f.Website)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
}

func (f *ClientForm) Validate() validation.Violations {
	return ClientRules.Validate(f.value)
}

func (f *ClientForm) value(name string) string {
	switch name {
	case "company_name":
		return f.CompanyName
	case "website":
		return f.Website
	case "phone":
		return f.Phone
	case "address":
		return f.Address
	}
	return ""
}

// Selected reports whether person id is checked.
func (f *ClientForm) Selected(id uint) bool {
	return slices.Contains(f.SelectedPeople, id)
}

// ToEntity maps the form onto a client record. IsDeleted is left false;
// callers updating an existing record carry the stored flag over.
func (f *ClientForm) ToEntity() *models.Client {
	return &models.Client{
		ID:          f.ID,
		Version:     f.Version,
		CompanyName: f.CompanyName,
		Website:     f.Website,
		Phone:       f.Phone,
		Address:     f.Address,
	}
}

// FromClient fills a form from a stored client. associated lists the people
// currently linked to it; their ids are pre-selected.
func FromClient(c *models.Client, associated []models.Person) *ClientForm {
	f := &ClientForm{
		ID:          c.ID,
		Version:     c.Version,
		CompanyName: c.CompanyName,
		Website:     c.Website,
		Phone:       c.Phone,
		Address:     c.Address,
	}
	for _, p := range associated {
		f.SelectedPeople = append(f.SelectedPeople, p.ID)
	}
	return f
}
