package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when an artifact does not exist
var ErrNotFound = errors.New("artifact not found")

// Backend persists serialized artifacts by name. Put overwrites.
type Backend interface {
	Get(name string) ([]byte, error)
	Put(name string, data []byte) error
	List() ([]string, error)
	Close() error
}

// Open selects a backend from a store URI:
//
//	/path/to/dir, dir:///path   JSON files in a directory
//	pebble:///path              pebble database
//	leveldb:///path             leveldb database
//	postgres://user@host/db     postgres table
func Open(uri string) (Backend, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		scheme, rest = "dir", uri
	}

	var (
		b   Backend
		err error
	)
	switch scheme {
	case "dir", "file":
		b, err = NewDir(rest)
	case "pebble":
		b, err = NewPebble(rest)
	case "leveldb":
		b, err = NewLevelDB(rest)
	case "postgres", "postgresql":
		b, err = NewPostgres(uri)
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", scheme)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

const fileExt = ".json"

// Dir stores each artifact as <name>.json in a directory
type Dir struct {
	root string
}

// NewDir creates the directory if needed
func NewDir(root string) (*Dir, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// Root returns the directory the artifacts live in
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) path(name string) string {
	return filepath.Join(d.root, name+fileExt)
}

func (d *Dir) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(d.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (d *Dir) Put(name string, data []byte) error {
	if err := os.WriteFile(d.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (d *Dir) Close() error {
	return nil
}
