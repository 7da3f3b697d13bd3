package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportCSV writes an artifact as CSV with a header row, for review in a
// spreadsheet. Accounts use the store's address codec.
func (s *Store) ExportCSV(name string, w io.Writer) error {
	data, err := s.backend.Get(name)
	if err != nil {
		return err
	}
	kind, err := kindOf(name, data)
	if err != nil {
		return err
	}

	var rows [][]string
	switch kind {
	case KindBalances:
		l, err := decodeBalances(s.codec, data)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", name, err)
		}
		rows = append(rows, []string{"Account", "Amount"})
		for _, r := range l {
			rows = append(rows, []string{s.codec.Format(r.Account), r.Amount.Dec()})
		}
	case KindVesting:
		records, err := decodeVesting(s.codec, data)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", name, err)
		}
		rows = append(rows, []string{"Account", "Begin", "Length", "Locked"})
		for _, r := range records {
			rows = append(rows, []string{
				s.codec.Format(r.Account),
				strconv.FormatUint(uint64(r.Start), 10),
				strconv.FormatUint(uint64(r.Duration), 10),
				r.Locked.Dec(),
			})
		}
	default:
		schedules, err := decodeSchedules(s.codec, data)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", name, err)
		}
		rows = append(rows, []string{"Account", "Locked", "PerBlock", "StartingBlock"})
		for _, sc := range schedules {
			rows = append(rows, []string{
				s.codec.Format(sc.Account),
				sc.Locked,
				sc.PerBlock,
				strconv.FormatUint(uint64(sc.StartingBlock), 10),
			})
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to export %s: %w", name, err)
	}
	return nil
}
