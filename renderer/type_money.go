package renderer

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in a currency, formatted with the currency's symbol and
// fraction digits.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// M returns a Money for a float amount.
func M[T ~float32 | ~float64](amount T, currency string) Money {
	return Money{Amount: float64(amount), Currency: currency}
}

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.Currency).Currency()
}

// String returns the string representation of the money value.
func (m Money) String() string {
	switch {
	case math.IsNaN(m.Amount):
		return "NaN"
	case math.IsInf(m.Amount, 1):
		return "+Inf"
	case math.IsInf(m.Amount, -1):
		return "-Inf"
	}
	cur := m.currency()
	minor := decimal.NewFromFloat(m.Amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.Amount == 0 {
		return "-"
	}
	if m.Amount > 0 && !math.IsInf(m.Amount, 1) {
		return "+" + m.String()
	}
	return m.String()
}
