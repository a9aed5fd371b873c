package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/atlasforge/blueprint/pkg/types"
)

// Option returns the value of a named option and whether it exists.
func (s *Store) Option(name string) (any, bool, error) {
	db, err := s.conn()
	if err != nil {
		return nil, false, err
	}

	var raw string
	err = db.QueryRow("SELECT value FROM options WHERE name = ?", name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading option %q: %w", name, err)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	return value, true, nil
}

// SetOption writes an option value, overwriting any existing value.
func (s *Store) SetOption(name string, value any) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if name == "" {
		return types.ErrInvalidData
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding option %q: %w", name, err)
	}
	if _, err := db.Exec(
		"INSERT INTO options (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value",
		name, string(raw),
	); err != nil {
		return fmt.Errorf("writing option %q: %w", name, err)
	}
	return nil
}
