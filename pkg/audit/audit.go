// Package audit checks computed datasets against hand-audited counts and
// totals. A mismatch means the genesis ledger would be wrong, so every
// failed check is fatal to the run.
package audit

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/airdrop/pkg/balance"
)

// ErrUnknownDataset is returned when a check names a dataset that has no
// expectation.
var ErrUnknownDataset = errors.New("no audited expectation for dataset")

// Expectation is the audited shape of one dataset
type Expectation struct {
	// Artifact is the stored name of the dataset, empty for computed checks.
	Artifact string
	Count    int
	Total    uint256.Int
}

type expectationYAML struct {
	Artifact string `yaml:"artifact,omitempty"`
	Count    int    `yaml:"count"`
	Total    string `yaml:"total"`
}

// MarshalYAML writes the total as a decimal string
func (e Expectation) MarshalYAML() (interface{}, error) {
	return expectationYAML{
		Artifact: e.Artifact,
		Count:    e.Count,
		Total:    e.Total.Dec(),
	}, nil
}

// UnmarshalYAML parses the total as a decimal string
func (e *Expectation) UnmarshalYAML(value *yaml.Node) error {
	var aux expectationYAML
	if err := value.Decode(&aux); err != nil {
		return err
	}
	total, err := balance.ParseAmount(aux.Total)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	if aux.Count < 0 {
		return fmt.Errorf("line %d: negative count %d", value.Line, aux.Count)
	}
	*e = Expectation{Artifact: aux.Artifact, Count: aux.Count, Total: total}
	return nil
}

// Table maps dataset ids to their expectations
type Table map[string]Expectation

// Get returns the expectation for id
func (t Table) Get(id string) (Expectation, error) {
	e, ok := t[id]
	if !ok {
		return Expectation{}, fmt.Errorf("%w: %s", ErrUnknownDataset, id)
	}
	return e, nil
}

// MismatchError describes a failed invariant
type MismatchError struct {
	Dataset  string
	Field    string
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("invariant violated for %s: %s expected %s, got %s", e.Dataset, e.Field, e.Expected, e.Actual)
}

// IsMismatch reports whether err carries a MismatchError
func IsMismatch(err error) bool {
	var m *MismatchError
	return errors.As(err, &m)
}

// Checker verifies datasets against a Table
type Checker struct {
	table  Table
	logger *zap.Logger
}

// NewChecker creates a checker. A nil logger disables logging.
func NewChecker(table Table, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{table: table, logger: logger}
}

// Table returns the expectations the checker consults
func (c *Checker) Table() Table {
	return c.table
}

// Check compares a record count and summed total with the expectation for id
func (c *Checker) Check(id string, count int, total uint256.Int) error {
	want, err := c.table.Get(id)
	if err != nil {
		return err
	}

	if count != want.Count {
		return c.fail(&MismatchError{
			Dataset:  id,
			Field:    "count",
			Expected: fmt.Sprint(want.Count),
			Actual:   fmt.Sprint(count),
		})
	}
	if !total.Eq(&want.Total) {
		return c.fail(&MismatchError{
			Dataset:  id,
			Field:    "total",
			Expected: want.Total.Dec(),
			Actual:   total.Dec(),
		})
	}

	c.logger.Info("invariant holds",
		zap.String("dataset", id),
		zap.Int("count", count),
		zap.String("total", total.Dec()),
	)
	return nil
}

// CheckList checks the length and total of a balance list
func (c *Checker) CheckList(id string, l balance.List) error {
	total, err := l.Total()
	if err != nil {
		return fmt.Errorf("summing %s: %w", id, err)
	}
	return c.Check(id, len(l), total)
}

// CheckConservation verifies that a transformation neither created nor
// destroyed value.
func (c *Checker) CheckConservation(id string, in, out uint256.Int) error {
	if !in.Eq(&out) {
		return c.fail(&MismatchError{
			Dataset:  id,
			Field:    "conserved total",
			Expected: in.Dec(),
			Actual:   out.Dec(),
		})
	}
	c.logger.Info("value conserved", zap.String("dataset", id), zap.String("total", in.Dec()))
	return nil
}

func (c *Checker) fail(err *MismatchError) error {
	c.logger.Error("invariant violated",
		zap.String("dataset", err.Dataset),
		zap.String("field", err.Field),
		zap.String("expected", err.Expected),
		zap.String("actual", err.Actual),
	)
	return err
}
