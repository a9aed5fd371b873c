// Package manifest defines the blueprint manifest document: the root
// description of everything a blueprint will create on import. A manifest
// is built incrementally by the collector or read whole from an unpacked
// archive, and is immutable once written.
package manifest

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/atlasforge/blueprint/pkg/types"
)

// SchemaVersion is the manifest schema this tool reads and writes.
const SchemaVersion = "2.0"

// FileName is the manifest file name inside an archive root.
const FileName = "main.json"

// MediaDir is the media subtree name inside an archive root.
const MediaDir = "media"

// Manifest is the root document.
type Manifest struct {
	Schema    string    `json:"schema"`
	Blueprint Blueprint `json:"blueprint"`
	Services  Services  `json:"services"`
}

// Blueprint carries the archive's self-description.
type Blueprint struct {
	Version     string `json:"version,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Services groups the per-service payloads. Content is the only service
// this tool produces.
type Services struct {
	Content Content `json:"content"`
}

// Content is the content-service payload. The integer-keyed maps are
// keyed by original entity IDs from the source host; encoding/json
// renders the keys as strings.
type Content struct {
	// Version is the minimum host runtime version required to import.
	Version string `json:"version,omitempty"`

	// Theme is the source host's active theme slug.
	Theme string `json:"theme,omitempty"`

	// Options maps option name to value.
	Options map[string]any `json:"options,omitempty"`

	// Plugins maps extension name to its version requirement and
	// schema-definition collections.
	Plugins map[string]Plugin `json:"plugins,omitempty"`

	// Posts maps original post ID to its record (GUID stripped).
	Posts map[int64]*types.Post `json:"posts,omitempty"`

	// PostTerms maps original post ID to the ordered terms attached to
	// that post.
	PostTerms map[int64][]types.Term `json:"postTerms,omitempty"`

	// PostMeta maps original post ID to its ordered metadata entries.
	PostMeta map[int64][]types.MetaEntry `json:"postMeta,omitempty"`

	// Media maps original media ID to the relative file path inside the
	// archive, always under media/.
	Media map[int64]string `json:"media,omitempty"`
}

// Plugin describes one extension's requirement and schema payload.
// Definition documents are opaque; the core only locates identifying keys.
type Plugin struct {
	Version     string                     `json:"version,omitempty"`
	PostTypes   map[string]json.RawMessage `json:"postTypes,omitempty"`
	Taxonomies  map[string]json.RawMessage `json:"taxonomies,omitempty"`
	FieldGroups map[string]json.RawMessage `json:"fieldGroups,omitempty"`
}

// Definitions returns the collection for a schema kind.
func (p Plugin) Definitions(kind types.SchemaKind) map[string]json.RawMessage {
	switch kind {
	case types.SchemaPostTypes:
		return p.PostTypes
	case types.SchemaTaxonomies:
		return p.Taxonomies
	case types.SchemaFieldGroups:
		return p.FieldGroups
	}
	return nil
}

// New creates an empty manifest for the given blueprint info.
func New(bp Blueprint) *Manifest {
	return &Manifest{
		Schema:    SchemaVersion,
		Blueprint: bp,
		Services:  Services{Content: Content{}},
	}
}

// Validate checks the blueprint info: a name is required and versions,
// when present, must be dotted-numeric.
func (b Blueprint) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Name, validation.Required),
		validation.Field(&b.Version, validation.Match(versionPattern)),
	)
}

// Slug returns the archive root folder name derived from the blueprint
// name: lowercased, runs of non-alphanumerics collapsed to hyphens.
func (m *Manifest) Slug() string {
	return Slugify(m.Blueprint.Name)
}

// Slugify normalizes a name into a folder-safe slug. An empty or fully
// non-alphanumeric name yields "blueprint".
func Slugify(name string) string {
	var b strings.Builder
	prevHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "blueprint"
	}
	return slug
}

// MediaPath returns the archive-relative POSIX path for a media file.
// Embedding the original media ID keeps two files with identical
// basenames from colliding.
func MediaPath(mediaID int64, basename string) string {
	return path.Join(MediaDir, fmt.Sprintf("%d", mediaID), basename)
}

// Marshal renders the manifest as pretty-printed UTF-8 JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
