package balance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the precision of the target chain's native token.
const Decimals = 18

// ErrOverflow is returned when an amount leaves the range of the chain's
// u128 balance type.
var ErrOverflow = errors.New("balance overflow")

// MaxAmount is the largest balance the chain can represent (2^128 - 1).
var MaxAmount = *new(uint256.Int).Rsh(new(uint256.Int).SetAllOne(), 128)

// NewAmount wraps a uint64 amount.
func NewAmount(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

// ParseAmount parses a base-10 amount and rejects values above MaxAmount.
func ParseAmount(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if v.Gt(&MaxAmount) {
		return uint256.Int{}, fmt.Errorf("%w: %s", ErrOverflow, s)
	}
	return *v, nil
}

// MustParseAmount is ParseAmount for constants.
func MustParseAmount(s string) uint256.Int {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b uint256.Int) (uint256.Int, error) {
	var z uint256.Int
	if _, overflow := z.AddOverflow(&a, &b); overflow || z.Gt(&MaxAmount) {
		return uint256.Int{}, fmt.Errorf("%w: %s + %s", ErrOverflow, a.Dec(), b.Dec())
	}
	return z, nil
}

// SaturatingAdd returns a+b clamped at MaxAmount.
func SaturatingAdd(a, b uint256.Int) uint256.Int {
	var z uint256.Int
	if _, overflow := z.AddOverflow(&a, &b); overflow || z.Gt(&MaxAmount) {
		return MaxAmount
	}
	return z
}

// SaturatingMul returns a*b clamped at MaxAmount. It never wraps.
func SaturatingMul(a, b uint256.Int) uint256.Int {
	var z uint256.Int
	if _, overflow := z.MulOverflow(&a, &b); overflow || z.Gt(&MaxAmount) {
		return MaxAmount
	}
	return z
}

// Sub returns a-b. The caller guarantees a >= b.
func Sub(a, b uint256.Int) uint256.Int {
	var z uint256.Int
	z.Sub(&a, &b)
	return z
}

// DivFloor returns floor(a/d). A zero divisor yields zero.
func DivFloor(a uint256.Int, d uint64) uint256.Int {
	var z uint256.Int
	z.Div(&a, uint256.NewInt(d))
	return z
}

// Format renders an amount with the given number of decimals, e.g.
// "1234.5 KSX". Trailing zeros of the fractional part are dropped.
func Format(amount uint256.Int, decimals uint8, symbol string) string {
	digits := amount.Dec()
	if decimals > 0 {
		if len(digits) <= int(decimals) {
			digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
		}
		whole := digits[:len(digits)-int(decimals)]
		frac := strings.TrimRight(digits[len(digits)-int(decimals):], "0")
		digits = whole
		if frac != "" {
			digits = whole + "." + frac
		}
	}
	if symbol == "" {
		return digits
	}
	return digits + " " + symbol
}
