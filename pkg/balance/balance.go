// Package balance holds the free-balance records every airdrop source is
// reduced to.
package balance

import (
	"sort"

	"github.com/holiman/uint256"

	"github.com/luxfi/airdrop/pkg/account"
)

// Record is the free balance of one account at a point in time
type Record struct {
	Account account.ID
	Amount  uint256.Int
}

// NewRecord builds a record from a uint64 amount
func NewRecord(id account.ID, amount uint64) Record {
	return Record{Account: id, Amount: NewAmount(amount)}
}

// List is an ordered sequence of balance records. Transformations never
// modify a List in place.
type List []Record

// Total sums the list with checked arithmetic
func (l List) Total() (uint256.Int, error) {
	var total uint256.Int
	for _, r := range l {
		var err error
		if total, err = CheckedAdd(total, r.Amount); err != nil {
			return uint256.Int{}, err
		}
	}
	return total, nil
}

// Clone returns a copy that shares nothing with l
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Accounts returns the account of every record, in list order
func (l List) Accounts() []account.ID {
	out := make([]account.ID, len(l))
	for i, r := range l {
		out[i] = r.Account
	}
	return out
}

// SortedByAmount returns a copy ordered by ascending amount. Equal amounts
// are ordered by account so the output is deterministic.
func (l List) SortedByAmount() List {
	out := l.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(&out[j].Amount); c != 0 {
			return c < 0
		}
		return account.Compare(out[i].Account, out[j].Account) < 0
	})
	return out
}

// SortedByAccount returns a copy ordered by account.
func (l List) SortedByAccount() List {
	out := l.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return account.Compare(out[i].Account, out[j].Account) < 0
	})
	return out
}

// Concat joins lists into a new list
func Concat(lists ...List) List {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make(List, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
