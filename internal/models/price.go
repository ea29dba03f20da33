package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PricePlaces is the number of decimal places prices are kept at.
const PricePlaces = 2

// ParsePrice reads a stored price. Unparseable values read as zero. The
// result is always rounded to PricePlaces so equal prices compare equal
// however they were written.
func ParsePrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero.Round(PricePlaces)
	}
	return d.Round(PricePlaces)
}
