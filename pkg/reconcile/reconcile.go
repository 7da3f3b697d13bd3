// Package reconcile merges and compares balance lists from independent
// sources.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/airdrop/pkg/account"
	"github.com/luxfi/airdrop/pkg/balance"
)

// ErrTreasuryMissing is returned when the old snapshot has no treasury record.
var ErrTreasuryMissing = errors.New("treasury account missing from snapshot")

// Deduplicate keeps the first record of every account and preserves the
// order of first occurrence.
func Deduplicate(l balance.List) balance.List {
	seen := make(map[account.ID]struct{}, len(l))
	out := make(balance.List, 0, len(l))
	for _, r := range l {
		if _, ok := seen[r.Account]; ok {
			continue
		}
		seen[r.Account] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DetectDuplicates walks the lists in order and returns every account that
// appears more than once, each reported once in the order it was first
// repeated. Duplicates are a data-quality signal, not an error.
func DetectDuplicates(lists ...balance.List) []account.ID {
	seen := make(map[account.ID]int)
	var dups []account.ID
	for _, l := range lists {
		for _, r := range l {
			seen[r.Account]++
			if seen[r.Account] == 2 {
				dups = append(dups, r.Account)
			}
		}
	}
	return dups
}

// Ledger maps each account to its combined balance
type Ledger map[account.ID]uint256.Int

// MergeSum folds the lists into one ledger, summing the amounts of accounts
// that appear more than once. Overflow is an error.
func MergeSum(lists ...balance.List) (Ledger, error) {
	ledger := make(Ledger)
	for _, l := range lists {
		for _, r := range l {
			prev, ok := ledger[r.Account]
			if !ok {
				ledger[r.Account] = r.Amount
				continue
			}
			sum, err := balance.CheckedAdd(prev, r.Amount)
			if err != nil {
				return nil, fmt.Errorf("merging account %s: %w", account.Hex(r.Account), err)
			}
			ledger[r.Account] = sum
		}
	}
	return ledger, nil
}

// Sorted returns the ledger as a list ordered by account
func (l Ledger) Sorted() balance.List {
	out := make(balance.List, 0, len(l))
	for id, amount := range l {
		out = append(out, balance.Record{Account: id, Amount: amount})
	}
	return out.SortedByAccount()
}

// Total sums every balance in the ledger
func (l Ledger) Total() (uint256.Int, error) {
	return l.Sorted().Total()
}

// Split is the result of comparing two snapshots of the same chain
type Split struct {
	// Genesis is credited directly at genesis; it includes the treasury.
	Genesis balance.List
	// Transfer left the old chain between the snapshots and is vested.
	Transfer balance.List
	// Treasury is the treasury record of the old snapshot.
	Treasury balance.Record
}

// SnapshotDelta separates value that left the ledger between the before
// and after snapshots from value that stayed.
//
// An account whose balance dropped by at least minDelta has the dropped
// part routed to Transfer and its remaining balance, when non-zero, to
// Genesis. Every other account keeps its old balance in Genesis. The
// treasury is excluded from the comparison and appended to Genesis
// unchanged. Both outputs are sorted by ascending amount.
func SnapshotDelta(before, after balance.List, minDelta uint256.Int, treasury account.ID) (Split, error) {
	var split Split

	found := false
	rest := make(balance.List, 0, len(before))
	for _, r := range before {
		if r.Account == treasury {
			if !found {
				split.Treasury = r
				found = true
			}
			continue
		}
		rest = append(rest, r)
	}
	if !found {
		return Split{}, fmt.Errorf("%w: %s", ErrTreasuryMissing, account.Hex(treasury))
	}

	current := make(map[account.ID]uint256.Int, len(after))
	for _, r := range after {
		if _, ok := current[r.Account]; !ok {
			current[r.Account] = r.Amount
		}
	}

	genesis := make(balance.List, 0, len(rest)+1)
	var transfer balance.List
	for _, r := range rest {
		now, ok := current[r.Account]
		if ok && r.Amount.Gt(&now) {
			delta := balance.Sub(r.Amount, now)
			if !delta.Lt(&minDelta) {
				if !now.IsZero() {
					genesis = append(genesis, balance.Record{Account: r.Account, Amount: now})
				}
				transfer = append(transfer, balance.Record{Account: r.Account, Amount: delta})
				continue
			}
		}
		genesis = append(genesis, r)
	}

	genesis = append(genesis, split.Treasury)

	split.Genesis = genesis.SortedByAmount()
	split.Transfer = transfer.SortedByAmount()
	return split, nil
}
