package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/atlasforge/blueprint/pkg/types"
)

// CreateMediaFromFile registers the file at path as a media entity. The
// file is copied into uploads/<id>/<basename>, its type detected from
// the extension, and the ID hint honored when free.
func (s *Store) CreateMediaFromFile(path string, hintID int64) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	src, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open media source: %w", err)
	}
	defer src.Close()

	basename := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(basename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	guid := newGUID()

	// Two inserts can't share the copied file location before the ID is
	// known, so insert first with an empty path, then place the file.
	id, err := insertWithHint(db, "media", "media_id", hintID, func(id any) (sql.Result, error) {
		return db.Exec(
			"INSERT INTO media (media_id, filename, mime_type, path, guid) VALUES (?, ?, ?, '', ?)",
			id, basename, mimeType, guid,
		)
	})
	if err != nil {
		return 0, fmt.Errorf("creating media: %w", err)
	}

	destDir := filepath.Join(s.uploadsDir(), fmt.Sprintf("%d", id))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, err
	}
	dest := filepath.Join(destDir, basename)
	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return 0, fmt.Errorf("copy media payload: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	if _, err := db.Exec("UPDATE media SET path = ? WHERE media_id = ?", dest, id); err != nil {
		return 0, fmt.Errorf("recording media path: %w", err)
	}
	return id, nil
}

// GetMedia retrieves a media entity by ID.
func (s *Store) GetMedia(id int64) (*types.Media, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var m types.Media
	err = db.QueryRow(
		"SELECT media_id, filename, mime_type, path, guid FROM media WHERE media_id = ?", id,
	).Scan(&m.ID, &m.Filename, &m.MimeType, &m.Path, &m.GUID)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting media %d: %w", id, err)
	}
	return &m, nil
}

// DeleteMedia removes a media entity and its stored file tree.
func (s *Store) DeleteMedia(id int64) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	m, err := s.GetMedia(id)
	if err != nil {
		return err
	}

	if _, err := db.Exec("DELETE FROM media WHERE media_id = ?", id); err != nil {
		return fmt.Errorf("deleting media %d: %w", id, err)
	}
	if m.Path != "" {
		_ = os.RemoveAll(filepath.Dir(m.Path))
	}
	return nil
}

// ListMedia returns every media entity, ordered by ID.
func (s *Store) ListMedia() ([]*types.Media, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT media_id, filename, mime_type, path, guid FROM media ORDER BY media_id")
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	defer rows.Close()

	var all []*types.Media
	for rows.Next() {
		var m types.Media
		if err := rows.Scan(&m.ID, &m.Filename, &m.MimeType, &m.Path, &m.GUID); err != nil {
			return nil, fmt.Errorf("scanning media: %w", err)
		}
		all = append(all, &m)
	}
	return all, rows.Err()
}

// MediaFilePath returns the absolute stored file path of a media entity.
func (s *Store) MediaFilePath(id int64) (string, error) {
	m, err := s.GetMedia(id)
	if err != nil {
		return "", err
	}
	return m.Path, nil
}
