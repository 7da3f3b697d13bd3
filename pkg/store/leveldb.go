package store

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB keeps artifacts in a leveldb database with the same key layout
// as Pebble.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB opens or creates the database at path
func NewLevelDB(path string) (*LevelDB, error) {
	d, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}
	return &LevelDB{db: d}, nil
}

func (l *LevelDB) Get(name string) ([]byte, error) {
	data, err := l.db.Get(artifactKey(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (l *LevelDB) Put(name string, data []byte) error {
	if err := l.db.Put(artifactKey(name), data, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (l *LevelDB) List() ([]string, error) {
	iter := l.db.NewIterator(util.BytesPrefix(artifactPrefix), nil)
	defer iter.Release()

	var names []string
	for iter.Next() {
		names = append(names, string(iter.Key()[len(artifactPrefix):]))
	}
	return names, iter.Error()
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
