package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/atlasforge/blueprint/pkg/types"
)

// providerName identifies the bundled schema extension in manifests.
const (
	providerName    = "schemakit"
	providerVersion = "1.2"
)

// Compile-time interface check: Provider must implement SchemaProvider.
var _ types.SchemaProvider = (*Provider)(nil)

// Provider implements the SchemaProvider capability on top of the
// store's schema_definitions table. Definitions are opaque JSON
// documents; only the identifying "key" field is interpreted.
type Provider struct {
	store *Store
}

// NewProvider returns the schema provider bound to a store.
func NewProvider(store *Store) *Provider {
	return &Provider{store: store}
}

// Name reports the extension name used in manifests.
func (p *Provider) Name() string { return providerName }

// Version reports the extension version.
func (p *Provider) Version() string { return providerVersion }

// Definitions returns every stored definition of a kind, keyed by its
// stable identifier.
func (p *Provider) Definitions(kind types.SchemaKind) (map[string]json.RawMessage, error) {
	db, err := p.store.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT key, def FROM schema_definitions WHERE kind = ? ORDER BY key", string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s definitions: %w", kind, err)
	}
	defer rows.Close()

	defs := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, def string
		if err := rows.Scan(&key, &def); err != nil {
			return nil, err
		}
		defs[key] = json.RawMessage(def)
	}
	return defs, rows.Err()
}

// Import persists a definition under its identifying key, replacing any
// existing definition with the same key.
func (p *Provider) Import(kind types.SchemaKind, key string, def json.RawMessage) error {
	db, err := p.store.conn()
	if err != nil {
		return err
	}
	if key == "" || !json.Valid(def) {
		return types.ErrInvalidData
	}

	if _, err := db.Exec(
		`INSERT INTO schema_definitions (kind, key, def) VALUES (?, ?, ?)
		 ON CONFLICT(kind, key) DO UPDATE SET def = excluded.def`,
		string(kind), key, string(def),
	); err != nil {
		return fmt.Errorf("importing %s %q: %w", kind, key, err)
	}
	return nil
}

// Delete removes a stored definition.
func (p *Provider) Delete(kind types.SchemaKind, key string) error {
	db, err := p.store.conn()
	if err != nil {
		return err
	}

	res, err := db.Exec(
		"DELETE FROM schema_definitions WHERE kind = ? AND key = ?", string(kind), key,
	)
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", kind, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// PrepareExport normalizes a definition for portability: host-local
// state under "local" is stripped and the identifying key must exist.
func (p *Provider) PrepareExport(kind types.SchemaKind, def json.RawMessage) (json.RawMessage, error) {
	return stripLocal(kind, def)
}

// PrepareImport is the symmetric normalization before persisting on the
// target host.
func (p *Provider) PrepareImport(kind types.SchemaKind, def json.RawMessage) (json.RawMessage, error) {
	return stripLocal(kind, def)
}

// stripLocal validates the identifying key and removes the host-local
// "local" object from a definition document.
func stripLocal(kind types.SchemaKind, def json.RawMessage) (json.RawMessage, error) {
	if !gjson.ValidBytes(def) {
		return nil, fmt.Errorf("%s definition: %w", kind, types.ErrInvalidData)
	}
	if !gjson.GetBytes(def, "key").Exists() {
		return nil, fmt.Errorf("%s definition has no identifying key: %w", kind, types.ErrInvalidData)
	}
	if !gjson.GetBytes(def, "local").Exists() {
		return def, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(def, &doc); err != nil {
		return nil, fmt.Errorf("%s definition: %w", kind, err)
	}
	delete(doc, "local")
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeclaredPostTypes returns the post-type slugs declared by stored
// post-type definitions, preferring the document's slug field over the
// storage key.
func (p *Provider) DeclaredPostTypes() ([]string, error) {
	db, err := p.store.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(
		"SELECT key, def FROM schema_definitions WHERE kind = ? ORDER BY key",
		string(types.SchemaPostTypes),
	)
	if err != nil {
		return nil, fmt.Errorf("listing post-type definitions: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var key, def string
		if err := rows.Scan(&key, &def); err != nil {
			return nil, err
		}
		if slug := gjson.Get(def, "slug").String(); slug != "" {
			slugs = append(slugs, slug)
		} else {
			slugs = append(slugs, key)
		}
	}
	return slugs, rows.Err()
}
