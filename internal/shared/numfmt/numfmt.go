// Package numfmt rounds floats for presentation in HTTP responses.
package numfmt

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	MoneyPlaces    = 2
	QuantityPlaces = 8
)

// Round rounds v half away from zero to the given number of decimal places.
// NaN and Inf are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Money rounds a price or P&L amount to cents.
func Money(v float64) float64 { return Round(v, MoneyPlaces) }

// Quantity rounds a base asset amount.
func Quantity(v float64) float64 { return Round(v, QuantityPlaces) }

// Percent rounds a percentage to two places.
func Percent(v float64) float64 { return Round(v, 2) }
