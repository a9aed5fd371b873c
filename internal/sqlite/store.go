// Package sqlite implements the reference host for the blueprint tool: a
// SQLite-backed ContentStore plus a SchemaProvider, so export and import
// runs execute end-to-end against a real content runtime.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/atlasforge/blueprint/pkg/types"
)

// schemaSQL creates the content tables on Attach.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
    post_id   INTEGER PRIMARY KEY,
    post_type TEXT NOT NULL,
    title     TEXT NOT NULL,
    content   TEXT NOT NULL DEFAULT '',
    excerpt   TEXT NOT NULL DEFAULT '',
    status    TEXT NOT NULL,
    slug      TEXT NOT NULL DEFAULT '',
    date      TEXT NOT NULL DEFAULT '',
    parent    INTEGER NOT NULL DEFAULT 0,
    guid      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS terms (
    term_id     INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    taxonomy    TEXT NOT NULL,
    slug        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    parent      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS term_relationships (
    post_id  INTEGER NOT NULL,
    term_id  INTEGER NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (post_id, term_id)
);

CREATE TABLE IF NOT EXISTS postmeta (
    meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    key     TEXT NOT NULL,
    value   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS media (
    media_id  INTEGER PRIMARY KEY,
    filename  TEXT NOT NULL,
    mime_type TEXT NOT NULL,
    path      TEXT NOT NULL,
    guid      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS options (
    name  TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_definitions (
    kind TEXT NOT NULL,
    key  TEXT NOT NULL,
    def  TEXT NOT NULL,
    PRIMARY KEY (kind, key)
);
`

// hostVersion is the runtime version the store reports unless the
// core_version option overrides it.
const hostVersion = "6.9"

// Compile-time interface check: Store must implement ContentStore.
var _ types.ContentStore = (*Store)(nil)

// Store implements the ContentStore interface backed by SQLite, with
// media payloads kept under DataDir/uploads.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewStore creates an unattached store; call Attach with a Config.
func NewStore() *Store {
	return &Store{}
}

// Attach opens the database under config.DataDir, creating the directory
// and schema as needed. Returns ErrAlreadyAttached when called twice.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "content.db"))
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.config = config
	s.config.DataDir = dataDir
	s.attached = true
	return nil
}

// Detach closes the database. Idempotent; after Detach, operations
// return ErrStoreDetached.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.attached = false
	return nil
}

// conn returns the open database handle or ErrStoreDetached.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	return s.db, nil
}

// uploadsDir is the root of the store's media payload area.
func (s *Store) uploadsDir() string {
	return filepath.Join(s.config.DataDir, "uploads")
}

// Version reports the host runtime version, honoring the core_version
// option when set.
func (s *Store) Version() string {
	if v, ok, err := s.Option("core_version"); err == nil && ok {
		if str, isStr := v.(string); isStr && str != "" {
			return str
		}
	}
	return hostVersion
}

// Theme reports the active theme slug from the stylesheet option.
func (s *Store) Theme() string {
	if v, ok, err := s.Option("stylesheet"); err == nil && ok {
		if str, isStr := v.(string); isStr {
			return str
		}
	}
	return "default"
}

// insertWithHint runs an insert assigning hintID when it is positive and
// free, otherwise letting SQLite pick the next rowid. Returns the
// assigned ID. The query must name the ID column first and use ? for it.
func insertWithHint(db *sql.DB, table, idColumn string, hintID int64, exec func(id any) (sql.Result, error)) (int64, error) {
	if hintID > 0 {
		var taken bool
		err := db.QueryRow(
			fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ?", table, idColumn), hintID,
		).Scan(&taken)
		if err == sql.ErrNoRows {
			if _, err := exec(hintID); err != nil {
				return 0, err
			}
			return hintID, nil
		}
		if err != nil {
			return 0, err
		}
		// Hint taken; fall through to a fresh ID.
	}

	res, err := exec(nil)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
