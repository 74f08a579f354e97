package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToPaise converts a rupee amount to the smallest currency unit.
func ToPaise(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	paise := amount.Mul(hundred)
	if !paise.Equal(paise.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has fractional paise", ErrInvalidAmount, amount)
	}
	return paise.IntPart(), nil
}

// FromPaise converts paise back to rupees.
func FromPaise(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}
