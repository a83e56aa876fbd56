package checkout

import "github.com/dmitrymomot/storefront/pkg/money"

// TaxRate is applied to the cart subtotal.
const TaxRate = 0.10

// Summary is the order total breakdown. Shipping is free.
type Summary struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// Summarize computes tax and total from the cart subtotal, rounded to cents.
func Summarize(subtotal float64) Summary {
	usd := money.USD()
	tax := usd.Round(subtotal * TaxRate)
	return Summary{
		Subtotal: usd.Round(subtotal),
		Tax:      tax,
		Total:    usd.Round(subtotal + tax),
	}
}

// Display formats each line with f.
func (s Summary) Display(f *money.Formatter) (subtotal, tax, total string) {
	return f.Format(s.Subtotal), f.Format(s.Tax), f.Format(s.Total)
}
