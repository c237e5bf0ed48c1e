package checkoutapi

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/storefront/lib/myerrors"
)

var contact = ContactInfo{
	Email:     "ada@example.com",
	FirstName: "Ada",
	LastName:  "Obi",
	Street:    "1 Marina Road",
	City:      "Lagos",
	Country:   "NG",
	Phone:     "+2348012345678",
}

func TestValidate(t *testing.T) {

	t.Run("Complete", func(t *testing.T) {
		assert.NoError(t, contact.Validate())
	})

	t.Run("Whitespace counts as present", func(t *testing.T) {
		info := contact
		info.Street = " "

		assert.NoError(t, info.Validate())
	})

	t.Run("Single missing field", func(t *testing.T) {
		info := contact
		info.Email = ""

		err := info.Validate()
		assert.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, myerrors.GetHTTPStatus(err))
		assert.Contains(t, err.Error(), "missing fields: email")
	})

	t.Run("All missing", func(t *testing.T) {
		err := ContactInfo{}.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "email, firstName, lastName, street, city, country, phone")
	})
}

func TestDecode(t *testing.T) {
	form := url.Values{
		"email":     []string{"ada@example.com"},
		"firstName": []string{"Ada"},
		"lastName":  []string{"Obi"},
		"street":    []string{"1 Marina Road"},
		"city":      []string{"Lagos"},
		"country":   []string{"NG"},
		"phone":     []string{"+2348012345678"},
		"channel":   []string{"card"},
	}

	got, err := NewFromValues(form)
	assert.NoError(t, err)
	assert.Equal(t, contact, got)
}

func TestFormValuesToHtml(t *testing.T) {
	values, err := ContactInfo{Email: "a@b.c", FirstName: `"><script>`}.ToForm()
	assert.NoError(t, err)

	got := string(FormValuesToHtml(values))

	assert.Contains(t, got, `<input type="hidden" name="email" value="a@b.c"/>`)
	assert.Contains(t, got, `<input type="hidden" name="firstName" value="&#34;&gt;&lt;script&gt;"/>`)
	assert.NotContains(t, got, "<script>")
}
