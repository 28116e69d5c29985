package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units.
type Money int64

func (m Money) Mul(n int64) Money { return m * Money(n) }

// MulChecked multiplies m by a non-negative n, failing with ErrValidation
// instead of wrapping around int64.
func (m Money) MulChecked(n int64) (Money, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: negative multiplier %d", ErrValidation, n)
	}
	if n != 0 && (m > Money(math.MaxInt64/n) || m < Money(math.MinInt64/n)) {
		return 0, fmt.Errorf("%w: %d x %d is out of range", ErrValidation, int64(m), n)
	}
	return m * Money(n), nil
}

// AddChecked returns m+o or ErrValidation when the sum leaves int64.
func (m Money) AddChecked(o Money) (Money, error) {
	if (o > 0 && m > math.MaxInt64-o) || (o < 0 && m < math.MinInt64-o) {
		return 0, fmt.Errorf("%w: %d + %d is out of range", ErrValidation, int64(m), int64(o))
	}
	return m + o, nil
}

// Decimal converts m to a decimal with the given number of minor-unit digits.
func (m Money) Decimal(digits int32) decimal.Decimal {
	return decimal.New(int64(m), -digits)
}

// Format renders m with a fixed number of fraction digits, e.g. "300.00".
func (m Money) Format(digits int32) string {
	return m.Decimal(digits).StringFixed(digits)
}

// ParseMoney parses a decimal string such as "12.50" into minor units.
// Values with more precision than digits allows are rejected.
func ParseMoney(s string, digits int32) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	return FromDecimal(d, digits)
}

func FromDecimal(d decimal.Decimal, digits int32) (Money, error) {
	shifted := d.Shift(digits)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", ErrValidation, d.String(), digits)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s is out of range", ErrValidation, d.String())
	}
	return Money(shifted.IntPart()), nil
}

// Totals computes subtotal and total for a set of line items.
// Delivery fee only counts for delivery orders. Callers validate the draft
// first, which rules out overflow.
func Totals(orderType OrderType, items []LineItem, discount, deliveryFee Money) (subtotal, fee, total Money) {
	for _, it := range items {
		subtotal += it.Subtotal()
	}
	if orderType == OrderDelivery {
		fee = deliveryFee
	}
	return subtotal, fee, subtotal - discount + fee
}

// CheckedTotals is Totals with every product and sum range-checked.
func CheckedTotals(orderType OrderType, items []LineItem, discount, deliveryFee Money) (subtotal, fee, total Money, err error) {
	for _, it := range items {
		line, err := it.UnitPrice.MulChecked(int64(it.Quantity))
		if err != nil {
			return 0, 0, 0, err
		}
		if subtotal, err = subtotal.AddChecked(line); err != nil {
			return 0, 0, 0, err
		}
	}
	if orderType == OrderDelivery {
		fee = deliveryFee
	}
	if total, err = subtotal.AddChecked(fee); err != nil {
		return 0, 0, 0, err
	}
	return subtotal, fee, total - discount, nil
}
