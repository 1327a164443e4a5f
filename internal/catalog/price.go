package catalog

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PriceOnRequest replaces the amount when a listing has no usable price.
const PriceOnRequest = "Prix sur demande"

// Formatter renders prices for one display locale and currency.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	scale   int
}

// NewFormatter falls back to French and MAD when the locale or the currency code
// cannot be parsed.
func NewFormatter(locale, code string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.French
	}
	u, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		u = currency.MustParseISO("MAD")
	}
	scale, _ := currency.Standard.Rounding(u)
	return &Formatter{printer: message.NewPrinter(tag), unit: u, scale: scale}
}

func (f *Formatter) Currency() string { return f.unit.String() }

// Label formats a price with the locale's grouping and decimal marks, followed by the
// ISO currency code. Zero or negative prices render PriceOnRequest, never "0".
func (f *Formatter) Label(price float64) string {
	if price <= 0 {
		return PriceOnRequest
	}
	return f.printer.Sprintf("%v %s", number.Decimal(price, number.Scale(f.scale)), f.unit)
}
