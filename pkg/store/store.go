// Package store loads and persists the airdrop datasets.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/airdrop/pkg/address"
	"github.com/luxfi/airdrop/pkg/balance"
	"github.com/luxfi/airdrop/pkg/vesting"
)

// ArtifactName renders the self-describing name of an output dataset, e.g.
// genesis_balances_chainx_snapshot_7418_7868415220855310000000000.
func ArtifactName(prefix string, count int, total uint256.Int) string {
	return fmt.Sprintf("%s_%d_%s", prefix, count, total.Dec())
}

// Store reads and writes typed records through a Backend. Accounts are
// rendered with the store's address codec.
type Store struct {
	backend Backend
	codec   address.Codec
}

// New creates a store over backend
func New(backend Backend, codec address.Codec) *Store {
	return &Store{backend: backend, codec: codec}
}

// OpenURI opens the backend named by uri, see Open
func OpenURI(uri string, codec address.Codec) (*Store, error) {
	backend, err := Open(uri)
	if err != nil {
		return nil, err
	}
	return New(backend, codec), nil
}

// Codec returns the address codec used for serialization
func (s *Store) Codec() address.Codec {
	return s.codec
}

// LoadBalances reads a balances artifact
func (s *Store) LoadBalances(name string) (balance.List, error) {
	data, err := s.backend.Get(name)
	if err != nil {
		return nil, err
	}
	l, err := decodeBalances(s.codec, data)
	if err != nil {
		return nil, fmt.Errorf("error parsing balances %s: %w", name, err)
	}
	return l, nil
}

// SaveBalances writes a balances artifact, replacing any previous version
func (s *Store) SaveBalances(name string, l balance.List) error {
	data, err := encodeBalances(s.codec, l)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return s.backend.Put(name, data)
}

// LoadVesting reads a vesting artifact
func (s *Store) LoadVesting(name string) ([]vesting.Record, error) {
	data, err := s.backend.Get(name)
	if err != nil {
		return nil, err
	}
	records, err := decodeVesting(s.codec, data)
	if err != nil {
		return nil, fmt.Errorf("error parsing vesting %s: %w", name, err)
	}
	return records, nil
}

// SaveVesting writes a vesting artifact
func (s *Store) SaveVesting(name string, records []vesting.Record) error {
	data, err := encodeVesting(s.codec, records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return s.backend.Put(name, data)
}

// LoadSchedules reads a transfer schedule artifact
func (s *Store) LoadSchedules(name string) ([]vesting.Schedule, error) {
	data, err := s.backend.Get(name)
	if err != nil {
		return nil, err
	}
	schedules, err := decodeSchedules(s.codec, data)
	if err != nil {
		return nil, fmt.Errorf("error parsing schedules %s: %w", name, err)
	}
	return schedules, nil
}

// SaveSchedules writes a transfer schedule artifact
func (s *Store) SaveSchedules(name string, schedules []vesting.Schedule) error {
	data, err := encodeSchedules(s.codec, schedules)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return s.backend.Put(name, data)
}

// Kind names the record type of an artifact
type Kind string

const (
	KindBalances  Kind = "balances"
	KindVesting   Kind = "vesting"
	KindSchedules Kind = "schedules"
)

// Summary describes a stored artifact
type Summary struct {
	Name  string
	Kind  Kind
	Count int
	Total uint256.Int
}

// Artifacts lists the names of every stored artifact
func (s *Store) Artifacts() ([]string, error) {
	return s.backend.List()
}

func kindOf(name string, data []byte) (Kind, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("error parsing %s: %w", name, err)
	}
	for _, k := range []Kind{KindBalances, KindVesting, KindSchedules} {
		if probe[string(k)] != nil {
			return k, nil
		}
	}
	return "", fmt.Errorf("%s is not an airdrop artifact", name)
}

// Describe decodes an artifact of any kind and summarizes it. The total is
// the free balance, locked vesting or locked transfer amount respectively.
func (s *Store) Describe(name string) (Summary, error) {
	data, err := s.backend.Get(name)
	if err != nil {
		return Summary{}, err
	}
	kind, err := kindOf(name, data)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Name: name, Kind: kind}
	switch kind {
	case KindBalances:
		l, err := decodeBalances(s.codec, data)
		if err != nil {
			return Summary{}, fmt.Errorf("error parsing %s: %w", name, err)
		}
		sum.Count = len(l)
		sum.Total, err = l.Total()
		return sum, err
	case KindVesting:
		records, err := decodeVesting(s.codec, data)
		if err != nil {
			return Summary{}, fmt.Errorf("error parsing %s: %w", name, err)
		}
		sum.Count = len(records)
		sum.Total, err = vesting.TotalVested(records)
		return sum, err
	default:
		schedules, err := decodeSchedules(s.codec, data)
		if err != nil {
			return Summary{}, fmt.Errorf("error parsing %s: %w", name, err)
		}
		sum.Count = len(schedules)
		sum.Total, err = vesting.TotalLocked(schedules)
		return sum, err
	}
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}
