// README: Common money value object and fare rounding used across modules.
package types

import "github.com/shopspring/decimal"

// DefaultCurrency is the currency the fare tables are calibrated in.
const DefaultCurrency = "INR"

// Money is an amount in minor units (paise, cents).
type Money struct {
	Amount   int64
	Currency string
}

// MoneyFromFare converts a fare in major units to Money, rounding half away from zero.
func MoneyFromFare(fare float64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{
		Amount:   decimal.NewFromFloat(fare).Shift(2).Round(0).IntPart(),
		Currency: currency,
	}
}

// Float returns the amount in major units.
func (m Money) Float() float64 {
	return decimal.New(m.Amount, -2).InexactFloat64()
}

// RoundCents rounds a fare to two decimal places.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
