// Package vesting derives the genesis vesting artifacts from balance lists.
package vesting

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/airdrop/pkg/account"
	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/reconcile"
)

// BlockNumber is a block height on the target chain
type BlockNumber = uint32

// Record is a cliff-and-linear vesting grant: Locked stays locked until
// Start and then unlocks linearly over Duration blocks.
type Record struct {
	Account  account.ID
	Start    BlockNumber
	Duration BlockNumber
	Locked   uint256.Int
}

// Schedule is a vesting schedule with a precomputed per-block unlock.
// Amounts are decimal text so no consumer has to parse them as numbers.
type Schedule struct {
	Account       account.ID
	Locked        string
	PerBlock      string
	StartingBlock BlockNumber
}

// CliffPolicy fixes the genesis vesting grant
type CliffPolicy struct {
	Start    BlockNumber `yaml:"start"`
	Duration BlockNumber `yaml:"duration"`
	// Divisor selects the vested share of the combined balance (10 = 1/10th).
	Divisor uint64 `yaml:"divisor"`
}

// DefaultCliffPolicy vests 1/10th of every combined balance from block
// 1_296_000 over 2_592_000 blocks.
var DefaultCliffPolicy = CliffPolicy{
	Start:    1_296_000,
	Duration: 2_592_000,
	Divisor:  10,
}

// TransferPolicy fixes the schedule applied to transferred balances
type TransferPolicy struct {
	Start           BlockNumber `yaml:"start"`
	DurationDivisor uint64      `yaml:"durationDivisor"`
}

// DefaultTransferPolicy unlocks transferred balances over 5_184_000 blocks
// starting at block 3_888_000.
var DefaultTransferPolicy = TransferPolicy{
	Start:           3_888_000,
	DurationDivisor: 5_184_000,
}

var errZeroDivisor = errors.New("divisor must be positive")

// Validate rejects policies that would divide by zero
func (p CliffPolicy) Validate() error {
	if p.Divisor == 0 {
		return fmt.Errorf("cliff policy: %w", errZeroDivisor)
	}
	return nil
}

// Validate rejects policies that would divide by zero
func (p TransferPolicy) Validate() error {
	if p.DurationDivisor == 0 {
		return fmt.Errorf("transfer policy: %w", errZeroDivisor)
	}
	return nil
}

// CliffResult is the output of BuildCliffVesting
type CliffResult struct {
	Records []Record
	// FreeTotal is the combined free balance of every vested account.
	FreeTotal uint256.Int
	// LockedTotal is the sum of Records[i].Locked.
	LockedTotal uint256.Int
	// Adjusted counts the records that received a correction.
	Adjusted int
}

// BuildCliffVesting merges the lists, drops the treasury and grants every
// remaining account floor(free/Divisor) plus its entry in adjustments.
// Records are ordered by account.
func BuildCliffVesting(lists []balance.List, treasury account.ID, adjustments balance.List, policy CliffPolicy) (CliffResult, error) {
	if err := policy.Validate(); err != nil {
		return CliffResult{}, err
	}

	ledger, err := reconcile.MergeSum(lists...)
	if err != nil {
		return CliffResult{}, fmt.Errorf("merging vesting sources: %w", err)
	}

	// later corrections for the same account replace earlier ones
	corrections := make(map[account.ID]uint256.Int, len(adjustments))
	for _, r := range adjustments {
		corrections[r.Account] = r.Amount
	}

	var res CliffResult
	res.Records = make([]Record, 0, len(ledger))
	for _, r := range ledger.Sorted() {
		if r.Account == treasury {
			continue
		}

		locked := balance.DivFloor(r.Amount, policy.Divisor)
		if extra, ok := corrections[r.Account]; ok {
			locked = balance.SaturatingAdd(locked, extra)
			res.Adjusted++
		}

		if res.FreeTotal, err = balance.CheckedAdd(res.FreeTotal, r.Amount); err != nil {
			return CliffResult{}, err
		}
		if res.LockedTotal, err = balance.CheckedAdd(res.LockedTotal, locked); err != nil {
			return CliffResult{}, err
		}

		res.Records = append(res.Records, Record{
			Account:  r.Account,
			Start:    policy.Start,
			Duration: policy.Duration,
			Locked:   locked,
		})
	}

	return res, nil
}

// BuildLinearTransferSchedule locks every balance in full and unlocks
// floor(balance/DurationDivisor) per block from policy.Start.
func BuildLinearTransferSchedule(l balance.List, policy TransferPolicy) ([]Schedule, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	schedules := make([]Schedule, 0, len(l))
	for _, r := range l {
		perBlock := balance.DivFloor(r.Amount, policy.DurationDivisor)
		schedules = append(schedules, Schedule{
			Account:       r.Account,
			Locked:        r.Amount.Dec(),
			PerBlock:      perBlock.Dec(),
			StartingBlock: policy.Start,
		})
	}

	locked, err := TotalLocked(schedules)
	if err != nil {
		return nil, err
	}
	total, err := l.Total()
	if err != nil {
		return nil, err
	}
	if len(schedules) != len(l) || !locked.Eq(&total) {
		return nil, fmt.Errorf("transfer schedule does not conserve its input: %d accounts locking %s, want %d locking %s",
			len(schedules), locked.Dec(), len(l), total.Dec())
	}

	return schedules, nil
}

// TotalLocked sums the Locked amounts of the schedules
func TotalLocked(schedules []Schedule) (uint256.Int, error) {
	var total uint256.Int
	for _, s := range schedules {
		v, err := balance.ParseAmount(s.Locked)
		if err != nil {
			return uint256.Int{}, fmt.Errorf("schedule for %s: %w", account.Hex(s.Account), err)
		}
		if total, err = balance.CheckedAdd(total, v); err != nil {
			return uint256.Int{}, err
		}
	}
	return total, nil
}

// TotalVested sums the Locked amounts of the vesting records
func TotalVested(records []Record) (uint256.Int, error) {
	var total uint256.Int
	for _, r := range records {
		var err error
		if total, err = balance.CheckedAdd(total, r.Locked); err != nil {
			return uint256.Int{}, err
		}
	}
	return total, nil
}
