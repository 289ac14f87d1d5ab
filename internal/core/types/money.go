// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// OptionalMoney is a monetary column that may be NULL in storage.
type OptionalMoney = decimal.NullDecimal

// MoneyScale is the number of decimal places stored for amounts and rates.
const MoneyScale = 2

var hundred = decimal.NewFromInt(100)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromInt creates a Money value from whole currency units.
func NewMoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	return decimal.RequireFromString(s)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Some wraps a value as a present OptionalMoney.
func Some(m Money) OptionalMoney {
	return decimal.NewNullDecimal(m)
}

// OrZero returns the value of an optional amount, or zero when it is absent.
func OrZero(m OptionalMoney) Money {
	if !m.Valid {
		return decimal.Zero
	}
	return m.Decimal
}

// FitsScale reports whether m can be stored without rounding.
func FitsScale(m Money) bool {
	return m.Equal(m.Round(MoneyScale))
}

// Percent returns amount * rate / 100.
func Percent(amount Money, rate Money) Money {
	return amount.Mul(rate).Div(hundred)
}

// Sum adds all values.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
