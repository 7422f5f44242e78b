package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMoneyUnderflow is returned when a subtraction would produce a negative amount.
	ErrMoneyUnderflow = errors.New("money: underflow")
	// ErrMoneyOverflow is returned when an operation exceeds the int64 range.
	ErrMoneyOverflow = errors.New("money: overflow")
	// ErrMoneyNegative is returned when a caller supplies a negative amount.
	ErrMoneyNegative = errors.New("money: negative amount")
)

// AddAmounts sums two non-negative amounts.
func AddAmounts(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrMoneyNegative
	}
	if a > math.MaxInt64-b {
		return 0, ErrMoneyOverflow
	}
	return a + b, nil
}

// SubtractAmounts computes a−b. The result is never negative: callers are
// expected to pre-check, and an underflow is reported rather than propagated.
func SubtractAmounts(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrMoneyNegative
	}
	if b > a {
		return 0, fmt.Errorf("%w: %d - %d", ErrMoneyUnderflow, a, b)
	}
	return a - b, nil
}

// MultiplyPrice computes unitPrice × quantity with overflow protection.
func MultiplyPrice(unitPrice int64, quantity int) (int64, error) {
	if unitPrice < 0 || quantity < 0 {
		return 0, ErrMoneyNegative
	}
	if quantity == 0 || unitPrice == 0 {
		return 0, nil
	}
	q := int64(quantity)
	if unitPrice > math.MaxInt64/q {
		return 0, ErrMoneyOverflow
	}
	return unitPrice * q, nil
}

// PercentOf computes round(amount × percent / 100) with half-up rounding.
// This is the single rounding rule for all fractional arithmetic; negative
// inputs clamp to zero so malformed upstream data never produces a negative
// monetary value.
func PercentOf(amount, percent int64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	if percent > 100 {
		percent = 100
	}
	if amount > math.MaxInt64/percent {
		// Avoid overflow in amount*percent by dividing first; the divide-first
		// path loses sub-unit precision only for amounts above ~9.2e16.
		return amount / 100 * percent
	}
	return (amount*percent + 50) / 100
}

// ClampAmount bounds value to [0, limit].
func ClampAmount(value, limit int64) int64 {
	if value < 0 {
		return 0
	}
	if value > limit {
		return limit
	}
	return value
}
