// Package db provides the pebble operations the artifact store relies on
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound is returned by Get for a missing key
var ErrNotFound = errors.New("key not found")

// DB wraps a pebble database with common operations
type DB struct {
	*pebble.DB
	path string
}

// Open opens a pebble database at the given path
func Open(path string, opts *pebble.Options) (*DB, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the database path
func (db *DB) Path() string {
	return db.path
}

// GetCopy returns a copy of the value stored under key
func (db *DB) GetCopy(key []byte) ([]byte, error) {
	value, closer, err := db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// PutSync writes key and waits for it to reach disk
func (db *DB) PutSync(key, value []byte) error {
	return db.Set(key, value, pebble.Sync)
}

// IteratePrefix iterates over all keys with the given prefix
func (db *DB) IteratePrefix(prefix []byte, fn func(key, value []byte) error) error {
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}

	return iter.Error()
}

// EnsureDir ensures the parent directory exists
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// keyUpperBound returns the upper bound for prefix iteration
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil // no upper bound
}
