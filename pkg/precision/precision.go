// Package precision rescales balances between token decimal bases.
package precision

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/airdrop/pkg/balance"
)

// Multipliers for the sources fed into the 18-decimal genesis
var (
	From8To18  = balance.NewAmount(10_000_000_000)
	From12To18 = balance.NewAmount(1_000_000)
)

// Multiplier returns 10^(to-from). Only upward rescaling is supported: the
// reverse would lose precision.
func Multiplier(from, to uint8) (uint256.Int, error) {
	if to < from {
		return uint256.Int{}, fmt.Errorf("cannot rescale from %d down to %d decimals", from, to)
	}
	// 10^39 already exceeds a u128 balance
	if to-from > 38 {
		return uint256.Int{}, fmt.Errorf("%w: 10^%d", balance.ErrOverflow, to-from)
	}
	var m uint256.Int
	m.Exp(uint256.NewInt(10), uint256.NewInt(uint64(to-from)))
	return m, nil
}

// Rescale multiplies every amount by multiplier, clamping at
// balance.MaxAmount instead of wrapping.
func Rescale(l balance.List, multiplier uint256.Int) balance.List {
	out := make(balance.List, len(l))
	for i, r := range l {
		out[i] = balance.Record{
			Account: r.Account,
			Amount:  balance.SaturatingMul(r.Amount, multiplier),
		}
	}
	return out
}
