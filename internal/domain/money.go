package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const minorUnitExponent = -2

// FormatPrice renders an amount in minor units, e.g. 1990 "brl" -> "BRL 19.90".
func FormatPrice(amount int64, currency string) string {
	value := decimal.New(amount, minorUnitExponent).StringFixed(2)
	if currency == "" {
		return value
	}
	return strings.ToUpper(currency) + " " + value
}
