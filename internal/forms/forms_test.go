package forms

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/go-records/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func validPerson() url.Values {
	return url.Values{
		"first_name":     {"Ada"},
		"last_name":      {"Lovelace"},
		"email_address":  {"ada@example.com"},
		"street_address": {"12 St. James's Sq"},
		"city":           {"London"},
		"state":          {"LN"},
		"zip_code":       {"12345"},
	}
}

func TestDecodeClient(t *testing.T) {
	r := postForm(url.Values{
		"id":              {"4"},
		"version":         {"3"},
		"company_name":    {"  Aquent  "},
		"website":         {"https://aquent.com"},
		"selected_people": {"1", "5"},
	})
	f, err := DecodeClient(r)
	require.NoError(t, err)

	assert.Equal(t, uint(4), f.ID)
	assert.Equal(t, uint(3), f.Version)
	assert.Equal(t, "Aquent", f.CompanyName)
	assert.Equal(t, []uint{1, 5}, f.SelectedPeople)
	assert.True(t, f.Selected(5))
	assert.False(t, f.Selected(2))
	assert.True(t, f.Validate().Empty())
}

func TestDecodeClientNoSelection(t *testing.T) {
	f, err := DecodeClient(postForm(url.Values{"company_name": {"Aquent"}}))
	require.NoError(t, err)
	assert.Empty(t, f.SelectedPeople)
}

func TestClientRules(t *testing.T) {
	tests := []struct {
		name  string
		form  ClientForm
		field string
		msg   string
	}{
		{"name required", ClientForm{}, "company_name", "Company name is required."},
		{"name too short", ClientForm{CompanyName: "A"}, "company_name", "Company name must be between 2 and 100 characters."},
		{"website scheme", ClientForm{CompanyName: "Aquent", Website: "aquent.com"}, "website", "Please enter a valid URL (include http:// or https://)."},
		{"phone short", ClientForm{CompanyName: "Aquent", Phone: "555-1234"}, "phone", "Phone must be between 10 and 25 characters."},
		{"phone letters", ClientForm{CompanyName: "Aquent", Phone: "call me maybe"}, "phone", "Please enter a valid phone number."},
		{"address short", ClientForm{CompanyName: "Aquent", Address: "Main"}, "address", "Address must be at least 5 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.form.Validate()
			assert.Equal(t, tt.msg, v[tt.field])
			assert.Len(t, v, 1)
		})
	}
}

func TestDecodePerson(t *testing.T) {
	values := validPerson()
	values.Set("client_id", "7")
	f, err := DecodePerson(postForm(values))
	require.NoError(t, err)
	require.NotNil(t, f.ClientID)
	assert.Equal(t, uint(7), *f.ClientID)
	assert.True(t, f.HasClient(7))
	assert.True(t, f.Validate().Empty())

	values.Set("client_id", "")
	f, err = DecodePerson(postForm(values))
	require.NoError(t, err)
	assert.Nil(t, f.ClientID)

	values.Set("client_id", "0")
	f, err = DecodePerson(postForm(values))
	require.NoError(t, err)
	assert.Nil(t, f.ClientID)
}

func TestPersonRules(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		msg   string
	}{
		{"digits in name", "first_name", "Ada2", "First name cannot contain numbers or special characters."},
		{"last name required", "last_name", "", "Last name is required."},
		{"bad email", "email_address", "ada@", "Enter a valid email address."},
		{"street chars", "street_address", "12 Main St!", "Street address contains invalid characters."},
		{"city digits", "city", "L0ndon", "City cannot contain numbers or special characters."},
		{"state length", "state", "FLA", "State must be 2 characters (e.g., FL)."},
		{"state letters", "state", "F1", "State must be two letters only (e.g., FL)."},
		{"zip", "zip_code", "1234", "Zip code must be 5 digits or ZIP+4 (e.g., 12345 or 12345-6789)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := validPerson()
			values.Set(tt.field, tt.value)
			f, err := DecodePerson(postForm(values))
			require.NoError(t, err)
			v := f.Validate()
			assert.Equal(t, tt.msg, v[tt.field])
			assert.Len(t, v, 1)
		})
	}
}

func TestZipPlusFour(t *testing.T) {
	values := validPerson()
	values.Set("zip_code", "12345-6789")
	f, err := DecodePerson(postForm(values))
	require.NoError(t, err)
	assert.True(t, f.Validate().Empty())
}

func TestMappers(t *testing.T) {
	clientID := uint(2)
	p := &models.Person{ID: 9, Version: 4, FirstName: "Ada", LastName: "Lovelace", ClientID: &clientID}
	pf := FromPerson(p)
	assert.Equal(t, uint(4), pf.Version)
	assert.True(t, pf.HasClient(2))
	assert.Equal(t, p.ClientID, pf.ToEntity().ClientID)

	c := &models.Client{ID: 2, Version: 5, CompanyName: "Aquent"}
	cf := FromClient(c, []models.Person{*p})
	assert.Equal(t, []uint{9}, cf.SelectedPeople)
	got := cf.ToEntity()
	assert.Equal(t, uint(5), got.Version)
	assert.Equal(t, "Aquent", got.CompanyName)
	assert.False(t, got.IsDeleted)
}
