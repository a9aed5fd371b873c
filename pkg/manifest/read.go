package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// versionPattern accepts dotted numeric versions like "6", "6.9", "6.9.1".
var versionPattern = regexp.MustCompile(`^$|^\d+(\.\d+)*$`)

// ErrNotFound reports that an unpacked directory carries no manifest
// file. Callers report this differently from a parse failure.
var ErrNotFound = errors.New("manifest not found")

// ParseError reports a manifest file that exists but is not valid JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load locates and parses main.json inside an unpacked archive directory.
// Returns ErrNotFound when the file is absent and *ParseError when its
// content is not valid structured data.
func Load(dir string) (*Manifest, error) {
	p := filepath.Join(dir, FileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Path: p, Err: err}
	}
	return &m, nil
}

// WriteFile writes the manifest as main.json under dir.
func (m *Manifest) WriteFile(dir string) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}
