package checkoutapi

import (
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strings"

	formcodec "github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"

	"github.com/MarcGrol/storefront/lib/myerrors"
)

type Stage string

const (
	StageInfo    Stage = "info"
	StagePayment Stage = "payment"
)

// ContactInfo is what the buyer enters on the first checkout stage
type ContactInfo struct {
	Email     string `form:"email" validate:"required"`
	FirstName string `form:"firstName" validate:"required"`
	LastName  string `form:"lastName" validate:"required"`
	Street    string `form:"street" validate:"required"`
	City      string `form:"city" validate:"required"`
	Country   string `form:"country" validate:"required"`
	Phone     string `form:"phone" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate only checks presence: a value of whitespace counts as filled in
func (ci ContactInfo) Validate() error {
	err := validate.Struct(ci)
	if err == nil {
		return nil
	}

	validationErrors := validator.ValidationErrors{}
	if !errors.As(err, &validationErrors) {
		return myerrors.NewInternalError(err)
	}

	missing := []string{}
	for _, fe := range validationErrors {
		missing = append(missing, fe.Field())
	}
	return myerrors.NewInvalidInputError(fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
}

func (ci ContactInfo) FullName() string {
	return ci.FirstName + " " + ci.LastName
}

func NewFromRequest(r *http.Request) (ContactInfo, error) {
	err := r.ParseForm()
	if err != nil {
		return ContactInfo{}, myerrors.NewInvalidInputError(err)
	}
	return NewFromValues(r.Form)
}

func NewFromValues(values url.Values) (ContactInfo, error) {
	info := ContactInfo{}
	err := formcodec.NewDecoder().Decode(&info, values)
	if err != nil {
		return info, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}

	return info, nil
}

func (ci ContactInfo) ToForm() (url.Values, error) {
	values, err := formcodec.NewEncoder().Encode(ci)
	if err != nil {
		return nil, fmt.Errorf("error encoding form: %s", err)
	}

	return values, nil
}

// FormValuesToHtml carries form values to the next page as hidden inputs
func FormValuesToHtml(values url.Values) template.HTML {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	buf := strings.Builder{}
	for _, key := range keys {
		for _, value := range values[key] {
			fmt.Fprintf(&buf, "<input type=\"hidden\" name=\"%s\" value=\"%s\"/>\n", html.EscapeString(key), html.EscapeString(value))
		}
	}
	return template.HTML(buf.String())
}
