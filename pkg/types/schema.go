package types

import "encoding/json"

// SchemaKind names one of the schema-definition collections a
// SchemaProvider manages.
type SchemaKind string

// Schema kinds, in the order the importer processes them.
const (
	SchemaPostTypes   SchemaKind = "postTypes"
	SchemaTaxonomies  SchemaKind = "taxonomies"
	SchemaFieldGroups SchemaKind = "fieldGroups"
)

// SchemaKinds lists every kind in processing order.
var SchemaKinds = []SchemaKind{SchemaPostTypes, SchemaTaxonomies, SchemaFieldGroups}

// SchemaProvider is the capability interface of the schema extension.
// Definitions are opaque documents in the extension's native stored
// format; the core interprets nothing beyond the identifying key. A host
// without the extension installed is modeled as a nil provider, never as
// runtime capability probing.
type SchemaProvider interface {
	// Name identifies the extension in manifests (plugins.<name>).
	Name() string

	// Version reports the extension version as a dotted string.
	Version() string

	// Definitions returns every stored definition of a kind, keyed by
	// its stable schema identifier.
	Definitions(kind SchemaKind) (map[string]json.RawMessage, error)

	// Import persists a definition under its identifying key. The
	// definition must already be normalized via PrepareImport.
	Import(kind SchemaKind, key string, def json.RawMessage) error

	// Delete removes a stored definition. Returns ErrNotFound if the
	// key is unknown.
	Delete(kind SchemaKind, key string) error

	// PrepareExport normalizes a definition for portability before it
	// enters a manifest.
	PrepareExport(kind SchemaKind, def json.RawMessage) (json.RawMessage, error)

	// PrepareImport is the symmetric normalization applied before
	// Import on the target host.
	PrepareImport(kind SchemaKind, def json.RawMessage) (json.RawMessage, error)

	// DeclaredPostTypes returns the post-type slugs declared by stored
	// post-type definitions.
	DeclaredPostTypes() ([]string, error)
}
