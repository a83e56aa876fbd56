package checkout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrymomot/storefront/pkg/sanitizer"
	"github.com/dmitrymomot/storefront/pkg/validator"
)

// Payment methods accepted by the backend.
const (
	PaymentCreditCard = "credit_card"
	PaymentPayPal     = "paypal"
)

var (
	expiryRegex = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	cvvRegex    = regexp.MustCompile(`^[0-9]{3}$`)
)

// Card holds the card fields of the checkout form. They are validated
// locally and never sent to the backend.
type Card struct {
	Name   string
	Number string
	Expiry string // MM/YY
	CVV    string
}

// ShippingForm is the checkout form.
type ShippingForm struct {
	FirstName     string
	LastName      string
	Email         string
	Address       string
	City          string
	State         string
	ZipCode       string
	PaymentMethod string
	Card          Card
}

// Normalize trims and collapses whitespace in every text field.
func (f ShippingForm) Normalize() ShippingForm {
	text := sanitizer.NormalizeText
	f.FirstName = text(f.FirstName)
	f.LastName = text(f.LastName)
	f.Email = sanitizer.NormalizeEmail(f.Email)
	f.Address = text(f.Address)
	f.City = text(f.City)
	f.State = text(f.State)
	f.ZipCode = sanitizer.Apply(f.ZipCode, sanitizer.Trim, sanitizer.ToUpper)
	f.PaymentMethod = sanitizer.Apply(f.PaymentMethod, sanitizer.Trim, sanitizer.ToLower)
	f.Card.Name = text(f.Card.Name)
	f.Card.Number = digitsOnly(f.Card.Number)
	f.Card.Expiry = sanitizer.Trim(f.Card.Expiry)
	f.Card.CVV = sanitizer.Trim(f.Card.CVV)
	return f
}

// Validate checks the form. Card fields are only required for card payments.
func (f ShippingForm) Validate() error {
	rules := []validator.Rule{
		validator.Required("firstName", f.FirstName),
		validator.Required("lastName", f.LastName),
		validator.Required("email", f.Email),
		validator.Email("email", f.Email),
		validator.Required("address", f.Address),
		validator.Required("city", f.City),
		validator.Required("state", f.State),
		validator.Required("zipCode", f.ZipCode),
		validator.ZipCode("zipCode", f.ZipCode),
		validator.OneOf("paymentMethod", f.PaymentMethod, PaymentCreditCard, PaymentPayPal),
	}
	if f.PaymentMethod == PaymentCreditCard {
		rules = append(rules,
			validator.Required("cardName", f.Card.Name),
			validator.Rule{
				Check: func() bool { return len(digitsOnly(f.Card.Number)) == 16 },
				Error: validator.ValidationError{Field: "cardNumber", Message: "must be 16 digits"},
			},
			validator.Rule{
				Check: func() bool { return expiryRegex.MatchString(f.Card.Expiry) },
				Error: validator.ValidationError{Field: "expiry", Message: "must be MM/YY"},
			},
			validator.Rule{
				Check: func() bool { return cvvRegex.MatchString(f.Card.CVV) },
				Error: validator.ValidationError{Field: "cvv", Message: "must be 3 digits"},
			},
		)
	}
	return validator.Apply(rules...)
}

// ShippingAddress joins the address as "address, city, state zip".
func (f ShippingForm) ShippingAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", f.Address, f.City, f.State, f.ZipCode)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
