// Package importer implements the import pipeline: it replays a manifest
// onto a target host in dependency order, building the identity remap
// tables as entities are created and consulting them at every step that
// rewrites a cross-reference.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cast"

	"github.com/atlasforge/blueprint/internal/remap"
	"github.com/atlasforge/blueprint/pkg/manifest"
	"github.com/atlasforge/blueprint/pkg/types"
)

// SchemaError reports a fatal schema import failure (post types and
// field groups; taxonomy failures are warnings).
type SchemaError struct {
	Kind types.SchemaKind
	Key  string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("import %s %q: %v", e.Kind, e.Key, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// MediaError reports a media file missing or unusable during import.
// This is fatal: a missing file indicates archive corruption, not a soft
// content issue.
type MediaError struct {
	Path string
	Err  error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("import media %s: %v", e.Path, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }

// Importer replays a manifest onto a target host.
type Importer struct {
	store  types.ContentStore
	schema types.SchemaProvider // nil when the extension is absent
	root   string               // unpacked archive directory holding media/
}

// New creates an importer reading media payloads under root.
func New(store types.ContentStore, schema types.SchemaProvider, root string) *Importer {
	return &Importer{store: store, schema: schema, root: root}
}

// Run executes the import steps in order. The remap set is created here,
// threaded through every step, and discarded when the run ends. A fatal
// error returns the partial Result accumulated so far.
func (im *Importer) Run(m *manifest.Manifest) (*Result, error) {
	remaps := remap.NewSet()
	res := &Result{}
	content := m.Services.Content

	if err := im.importSchemas(content, res); err != nil {
		return res, err
	}
	im.importPosts(content, remaps, res)
	im.importTerms(content, remaps, res)
	im.assignTerms(content, remaps, res)
	if err := im.importMedia(content, remaps, res); err != nil {
		return res, err
	}
	im.importMeta(content, remaps, res)
	im.importOptions(content, res)

	return res, nil
}

// importSchemas persists the manifest's schema definitions: post types,
// then taxonomies, then field groups. Post-type and field-group failures
// abort the run with the first error, because later steps assume those
// schemas exist; a failed taxonomy only costs tagging, so taxonomy
// failures accumulate as warnings.
func (im *Importer) importSchemas(content manifest.Content, res *Result) error {
	if im.schema == nil || len(content.Plugins) == 0 {
		return nil
	}

	plugin, ok := content.Plugins[im.schema.Name()]
	if !ok {
		return nil
	}

	for _, kind := range types.SchemaKinds {
		defs := plugin.Definitions(kind)
		for _, key := range sortedKeys(defs) {
			prepared, err := im.schema.PrepareImport(kind, defs[key])
			if err == nil {
				err = im.schema.Import(kind, key, prepared)
			}
			if err != nil {
				if kind == types.SchemaTaxonomies {
					res.warnf("schema", "taxonomy %q: %v", key, err)
					continue
				}
				return &SchemaError{Kind: kind, Key: key, Err: err}
			}
			res.SchemasImported++
		}
	}
	return nil
}

// importPosts creates each post, requesting reuse of its original ID.
// The host may refuse the hint; the actually-assigned ID is recorded in
// the post remap when it differs. Individual failures do not abort.
func (im *Importer) importPosts(content manifest.Content, remaps *remap.Set, res *Result) {
	for _, originalID := range sortedIDs(content.Posts) {
		record := content.Posts[originalID].Clone()
		record.ID = 0
		record.GUID = "" // the host regenerates it

		assigned, err := im.store.CreatePost(record, originalID)
		if err != nil {
			res.warnf("posts", "post %d: %v", originalID, err)
			continue
		}
		remaps.Posts.Record(originalID, assigned)
		res.PostsCreated++
	}
}

// importTerms creates each distinct term referenced by any post,
// de-duplicated by original term ID. A term whose name+taxonomy+parent
// already exists on the target is skipped and remapped onto the existing
// term; creation failures accumulate as warnings.
func (im *Importer) importTerms(content manifest.Content, remaps *remap.Set, res *Result) {
	seen := make(map[int64]bool)
	for _, postID := range sortedIDs(content.PostTerms) {
		for _, term := range content.PostTerms[postID] {
			if seen[term.TermID] {
				continue
			}
			seen[term.TermID] = true

			if term.Name == "" {
				res.warnf("terms", "term %d has no name", term.TermID)
				continue
			}

			existing, err := im.store.FindTerm(term.Name, term.Taxonomy, term.Parent)
			if err == nil {
				// Idempotence guard, not an error: point the remap at
				// the term that is already there.
				remaps.Terms.Record(term.TermID, existing.TermID)
				res.TermsSkipped++
				continue
			}
			if !errors.Is(err, types.ErrNotFound) {
				res.warnf("terms", "term %q: %v", term.Name, err)
				continue
			}

			create := term
			assigned, err := im.store.CreateTerm(&create, term.TermID)
			if err != nil {
				res.warnf("terms", "term %q: %v", term.Name, err)
				continue
			}
			remaps.Terms.Record(term.TermID, assigned)
			res.TermsCreated++
		}
	}
}

// assignTerms attaches each (post, term) pair from the manifest,
// resolving both IDs through their remaps with a literal fallback, and
// appending to any assignments the post already has.
func (im *Importer) assignTerms(content manifest.Content, remaps *remap.Set, res *Result) {
	for _, originalPostID := range sortedIDs(content.PostTerms) {
		postID := remaps.Posts.Resolve(originalPostID)
		for _, term := range content.PostTerms[originalPostID] {
			termID := remaps.Terms.Resolve(term.TermID)
			if err := im.store.AttachTerms(postID, []int64{termID}, true); err != nil {
				res.warnf("tags", "post %d term %d: %v", postID, termID, err)
				continue
			}
			res.TermsAttached++
		}
	}
}

// importMedia registers each media payload from the unpacked archive.
// An unreadable file is fatal.
func (im *Importer) importMedia(content manifest.Content, remaps *remap.Set, res *Result) error {
	for _, originalID := range sortedIDs(content.Media) {
		rel := content.Media[originalID]
		src := filepath.Join(im.root, filepath.FromSlash(rel))
		if _, err := os.Stat(src); err != nil {
			return &MediaError{Path: rel, Err: err}
		}

		assigned, err := im.store.CreateMediaFromFile(src, originalID)
		if err != nil {
			return &MediaError{Path: rel, Err: err}
		}
		remaps.Media.Record(originalID, assigned)
		res.MediaImported++
	}
	return nil
}

// importMeta writes each post's metadata under its remapped post ID,
// rewriting thumbnail references through the media remap. Failures are
// non-fatal warnings.
func (im *Importer) importMeta(content manifest.Content, remaps *remap.Set, res *Result) {
	for _, originalPostID := range sortedIDs(content.PostMeta) {
		postID := remaps.Posts.Resolve(originalPostID)
		for _, entry := range content.PostMeta[originalPostID] {
			value := entry.Value
			if entry.Key == types.MetaKeyThumbnail {
				value = remaps.Media.Resolve(cast.ToInt64(entry.Value))
			}
			if err := im.store.SetPostMeta(postID, entry.Key, value); err != nil {
				res.warnf("meta", "post %d key %q: %v", postID, entry.Key, err)
				continue
			}
			res.MetaWritten++
		}
	}
}

// importOptions writes every manifest option, unconditionally
// overwriting existing values.
func (im *Importer) importOptions(content manifest.Content, res *Result) {
	for _, name := range sortedKeys(content.Options) {
		if err := im.store.SetOption(name, content.Options[name]); err != nil {
			res.warnf("options", "option %q: %v", name, err)
			continue
		}
		res.OptionsWritten++
	}
}

// sortedIDs returns a map's int64 keys ascending, so every step walks
// the manifest deterministically regardless of map iteration order.
func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sortedKeys returns a map's string keys ascending.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
