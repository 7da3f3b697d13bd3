package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/holiman/uint256"

	"github.com/luxfi/airdrop/pkg/account"
	"github.com/luxfi/airdrop/pkg/address"
	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/vesting"
)

// The artifacts are consumed by the genesis builder, which expects tuples:
//
//	{"balances":  [[who, free], ...]}
//	{"vesting":   [[who, begin, length, liquid], ...]}
//	{"schedules": [[who, "locked", "per_block", starting_block], ...]}

type balancesFile struct {
	Balances [][]json.RawMessage `json:"balances"`
}

type vestingFile struct {
	Vesting [][]json.RawMessage `json:"vesting"`
}

type schedulesFile struct {
	Schedules [][]json.RawMessage `json:"schedules"`
}

func encodeBalances(codec address.Codec, l balance.List) ([]byte, error) {
	rows := make([][]interface{}, len(l))
	for i, r := range l {
		rows[i] = []interface{}{codec.Format(r.Account), json.Number(r.Amount.Dec())}
	}
	return json.MarshalIndent(map[string]interface{}{"balances": rows}, "", "  ")
}

func decodeBalances(codec address.Codec, data []byte) (balance.List, error) {
	var f balancesFile
	if err := strictUnmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Balances == nil {
		return nil, fmt.Errorf("missing balances field")
	}

	l := make(balance.List, 0, len(f.Balances))
	for i, row := range f.Balances {
		if len(row) != 2 {
			return nil, fmt.Errorf("balance %d: expected [who, free], got %d fields", i, len(row))
		}
		id, err := decodeAccount(codec, row[0])
		if err != nil {
			return nil, fmt.Errorf("balance %d: %w", i, err)
		}
		amount, err := decodeAmount(row[1])
		if err != nil {
			return nil, fmt.Errorf("balance %d: %w", i, err)
		}
		l = append(l, balance.Record{Account: id, Amount: amount})
	}
	return l, nil
}

func encodeVesting(codec address.Codec, records []vesting.Record) ([]byte, error) {
	rows := make([][]interface{}, len(records))
	for i, r := range records {
		rows[i] = []interface{}{codec.Format(r.Account), r.Start, r.Duration, json.Number(r.Locked.Dec())}
	}
	return json.MarshalIndent(map[string]interface{}{"vesting": rows}, "", "  ")
}

func decodeVesting(codec address.Codec, data []byte) ([]vesting.Record, error) {
	var f vestingFile
	if err := strictUnmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Vesting == nil {
		return nil, fmt.Errorf("missing vesting field")
	}

	records := make([]vesting.Record, 0, len(f.Vesting))
	for i, row := range f.Vesting {
		if len(row) != 4 {
			return nil, fmt.Errorf("vesting %d: expected [who, begin, length, liquid], got %d fields", i, len(row))
		}
		var r vesting.Record
		var err error
		if r.Account, err = decodeAccount(codec, row[0]); err != nil {
			return nil, fmt.Errorf("vesting %d: %w", i, err)
		}
		if err := json.Unmarshal(row[1], &r.Start); err != nil {
			return nil, fmt.Errorf("vesting %d: begin: %w", i, err)
		}
		if err := json.Unmarshal(row[2], &r.Duration); err != nil {
			return nil, fmt.Errorf("vesting %d: length: %w", i, err)
		}
		if r.Locked, err = decodeAmount(row[3]); err != nil {
			return nil, fmt.Errorf("vesting %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func encodeSchedules(codec address.Codec, schedules []vesting.Schedule) ([]byte, error) {
	rows := make([][]interface{}, len(schedules))
	for i, s := range schedules {
		rows[i] = []interface{}{codec.Format(s.Account), s.Locked, s.PerBlock, s.StartingBlock}
	}
	return json.MarshalIndent(map[string]interface{}{"schedules": rows}, "", "  ")
}

func decodeSchedules(codec address.Codec, data []byte) ([]vesting.Schedule, error) {
	var f schedulesFile
	if err := strictUnmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Schedules == nil {
		return nil, fmt.Errorf("missing schedules field")
	}

	schedules := make([]vesting.Schedule, 0, len(f.Schedules))
	for i, row := range f.Schedules {
		if len(row) != 4 {
			return nil, fmt.Errorf("schedule %d: expected [who, locked, per_block, starting_block], got %d fields", i, len(row))
		}
		var s vesting.Schedule
		var err error
		if s.Account, err = decodeAccount(codec, row[0]); err != nil {
			return nil, fmt.Errorf("schedule %d: %w", i, err)
		}
		for j, dst := range []*string{&s.Locked, &s.PerBlock} {
			if err := json.Unmarshal(row[j+1], dst); err != nil {
				return nil, fmt.Errorf("schedule %d: amount text: %w", i, err)
			}
			if _, err := balance.ParseAmount(*dst); err != nil {
				return nil, fmt.Errorf("schedule %d: %w", i, err)
			}
		}
		if err := json.Unmarshal(row[3], &s.StartingBlock); err != nil {
			return nil, fmt.Errorf("schedule %d: starting block: %w", i, err)
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("malformed artifact: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("malformed artifact: trailing data after the first value")
	}
	return nil
}

func decodeAccount(codec address.Codec, raw json.RawMessage) (account.ID, error) {
	var addr string
	if err := json.Unmarshal(raw, &addr); err != nil {
		return account.Empty, fmt.Errorf("account: %w", err)
	}
	id, _, err := codec.Parse(addr)
	return id, err
}

// decodeAmount accepts a bare JSON number or a decimal string.
func decodeAmount(raw json.RawMessage) (uint256.Int, error) {
	text := string(bytes.TrimSpace(raw))
	if len(text) >= 2 && text[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return uint256.Int{}, fmt.Errorf("amount: %w", err)
		}
	}
	return balance.ParseAmount(text)
}
