package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

const createArtifactsTable = `
CREATE TABLE IF NOT EXISTS airdrop_artifacts (
	name       TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres keeps artifacts in the airdrop_artifacts table so reviewers can
// query them next to other chain exports.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects with a lib/pq DSN and creates the table if needed
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	if _, err := db.Exec(createArtifactsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create artifacts table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(name string) ([]byte, error) {
	var data []byte
	err := p.db.QueryRow(`SELECT payload FROM airdrop_artifacts WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (p *Postgres) Put(name string, data []byte) error {
	_, err := p.db.Exec(`
		INSERT INTO airdrop_artifacts (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		name, data)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (p *Postgres) List() ([]string, error) {
	rows, err := p.db.Query(`SELECT name FROM airdrop_artifacts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
