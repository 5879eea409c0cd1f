package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimal places used for formatted balances.
const DisplayPlaces = 4

// ToDecimal converts an amount in smallest units into whole units.
func ToDecimal(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// FormatFixed renders amount/10^decimals with exactly `places` decimals.
// Extra digits are truncated, never rounded up, so the result never exceeds the real balance.
// Example: amount=1234567890000000000, decimals=18, places=4 => "1.2345"
func FormatFixed(amount *big.Int, decimals uint8, places int32) string {
	return ToDecimal(amount, decimals).Truncate(places).StringFixed(places)
}

// FormatBigInt converts a big.Int value to a human-readable string without trailing zeros.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}
	return ToDecimal(amount, decimals).String()
}

// ParseUnits converts a whole-unit amount into smallest units.
// It fails when the amount has more fractional digits than the token supports.
func ParseUnits(amount decimal.Decimal, decimals uint8) (*big.Int, error) {
	shifted := amount.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount.String(), decimals)
	}
	return shifted.BigInt(), nil
}
