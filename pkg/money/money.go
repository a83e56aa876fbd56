// Package money formats prices the way the storefront displays them.
//
// Amounts arrive from the backend as float64 dollars. Formatting uses the
// currency's standard scale and the locale's digit grouping:
//
//	money.USD().Format(39.98)   // "$39.98"
//	money.USD().Format(1234.5)  // "$1,234.50"
package money

import (
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts of one currency for one locale.
// It is safe for concurrent use.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	symbol  string
	scale   int
}

// NewFormatter creates a formatter for unit in the given locale.
func NewFormatter(unit currency.Unit, tag language.Tag) *Formatter {
	p := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		unit:    unit,
		printer: p,
		symbol:  strings.TrimSpace(p.Sprint(currency.Symbol(unit))),
		scale:   scale,
	}
}

// USD formats US dollars for en-US.
func USD() *Formatter {
	return NewFormatter(currency.USD, language.AmericanEnglish)
}

// Format returns the amount with the currency symbol prefixed and no space.
func (f *Formatter) Format(amount float64) string {
	amount = f.Round(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(amount, number.Scale(f.scale)))
}

// Round rounds half away from zero to the currency's minor unit.
func (f *Formatter) Round(amount float64) float64 {
	p := math.Pow10(f.scale)
	return math.Round(amount*p) / p
}

// Unit returns the formatter's currency.
func (f *Formatter) Unit() currency.Unit {
	return f.unit
}
