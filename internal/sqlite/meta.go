package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/atlasforge/blueprint/pkg/types"
)

// PostMeta returns the metadata entries of a post in insertion order.
// Values are stored JSON-encoded and decoded on the way out.
func (s *Store) PostMeta(postID int64) ([]types.MetaEntry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT key, value FROM postmeta WHERE post_id = ? ORDER BY meta_id", postID,
	)
	if err != nil {
		return nil, fmt.Errorf("meta for post %d: %w", postID, err)
	}
	defer rows.Close()

	var entries []types.MetaEntry
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scanning meta: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			// Pre-JSON rows pass through as raw strings.
			value = raw
		}
		entries = append(entries, types.MetaEntry{Key: key, Value: value})
	}
	return entries, rows.Err()
}

// SetPostMeta writes one key/value pair for a post, replacing existing
// values of the key.
func (s *Store) SetPostMeta(postID int64, key string, value any) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if key == "" {
		return types.ErrInvalidData
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding meta %q: %w", key, err)
	}

	if _, err := db.Exec("DELETE FROM postmeta WHERE post_id = ? AND key = ?", postID, key); err != nil {
		return fmt.Errorf("replacing meta %q: %w", key, err)
	}
	if _, err := db.Exec(
		"INSERT INTO postmeta (post_id, key, value) VALUES (?, ?, ?)",
		postID, key, string(raw),
	); err != nil {
		return fmt.Errorf("writing meta %q: %w", key, err)
	}
	return nil
}
