package store

import (
	"errors"
	"fmt"

	"github.com/luxfi/airdrop/pkg/db"
)

var artifactPrefix = []byte("artifact/")

func artifactKey(name string) []byte {
	key := make([]byte, 0, len(artifactPrefix)+len(name))
	key = append(key, artifactPrefix...)
	return append(key, name...)
}

// Pebble keeps artifacts in a pebble database under the artifact/ prefix
type Pebble struct {
	db *db.DB
}

// NewPebble opens or creates the database at path
func NewPebble(path string) (*Pebble, error) {
	if err := db.EnsureDir(path); err != nil {
		return nil, err
	}
	d, err := db.Open(path, nil)
	if err != nil {
		return nil, err
	}
	return &Pebble{db: d}, nil
}

func (p *Pebble) Get(name string) ([]byte, error) {
	data, err := p.db.GetCopy(artifactKey(name))
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (p *Pebble) Put(name string, data []byte) error {
	if err := p.db.PutSync(artifactKey(name), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (p *Pebble) List() ([]string, error) {
	var names []string
	err := p.db.IteratePrefix(artifactPrefix, func(key, _ []byte) error {
		names = append(names, string(key[len(artifactPrefix):]))
		return nil
	})
	return names, err
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
