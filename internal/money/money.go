// Package money formats amounts for display and converts between currencies
// through the USD pivot held in settings.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned when a conversion names a currency with no
// configured exchange rate.
var ErrUnknownCurrency = fmt.Errorf("unknown currency")

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"RWF": "FRw",
}

// Symbol returns the display symbol for code, falling back to the code
// itself for currencies without one.
func Symbol(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return code
}

// Format renders amount with the currency's symbol and two decimal places.
func Format(amount decimal.Decimal, code string) string {
	return fmt.Sprintf("%s%s", Symbol(code), amount.StringFixed(2))
}

// Convert translates amount from one currency to another through USD. Rates
// map a currency code to units per USD, so the pivot is amount/fromRate in
// USD, then times toRate.
func Convert(amount decimal.Decimal, from, to string, rates map[string]decimal.Decimal) (decimal.Decimal, error) {
	fromRate, ok := rates[from]
	if !ok || fromRate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toRate, ok := rates[to]
	if !ok || toRate.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}
	if from == to {
		return amount, nil
	}
	return amount.Div(fromRate).Mul(toRate), nil
}
