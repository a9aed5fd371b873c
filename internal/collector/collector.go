// Package collector implements the export pipeline: it walks content in
// dependency order (posts, terms, metadata, media, options, schemas) and
// produces the blueprint manifest plus a media tree in the working
// directory.
package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/atlasforge/blueprint/pkg/manifest"
	"github.com/atlasforge/blueprint/pkg/types"
)

// Default option names always included in an export.
var defaultOptionNames = []string{"stylesheet", "template", "theme_mods"}

// Options controls one export run.
type Options struct {
	// Blueprint is the archive's self-description.
	Blueprint manifest.Blueprint

	// MinContentVersion is the minimum host version the manifest will
	// require on import. Empty means no requirement.
	MinContentVersion string

	// PostTypes restricts the exported post types. Empty selects the
	// built-in content types plus every schema-declared post type.
	PostTypes []string

	// OptionNames are extra option values to export, merged with the
	// built-in defaults.
	OptionNames []string
}

// Collector walks a source host and builds a manifest.
type Collector struct {
	store   types.ContentStore
	schema  types.SchemaProvider // nil when the extension is absent
	workDir string
}

// New creates a collector writing media payloads under workDir.
func New(store types.ContentStore, schema types.SchemaProvider, workDir string) *Collector {
	return &Collector{store: store, schema: schema, workDir: workDir}
}

// Run executes the export steps in order. Each step is skipped when its
// input set is empty; a media copy failure aborts the run because a
// manifest referencing an uncopied file is invalid.
func (c *Collector) Run(opts Options) (*manifest.Manifest, error) {
	if err := opts.Blueprint.Validate(); err != nil {
		return nil, fmt.Errorf("blueprint info: %w", err)
	}

	// The working directory is cleared so artifacts from a previous
	// run never leak into this archive.
	if err := os.RemoveAll(c.workDir); err != nil {
		return nil, fmt.Errorf("clear work dir: %w", err)
	}
	if err := os.MkdirAll(c.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	m := manifest.New(opts.Blueprint)
	m.Services.Content.Version = opts.MinContentVersion
	m.Services.Content.Theme = c.store.Theme()

	if err := c.collectPosts(m, opts.PostTypes); err != nil {
		return nil, err
	}
	if len(m.Services.Content.Posts) > 0 {
		if err := c.collectTerms(m); err != nil {
			return nil, err
		}
		if err := c.collectMeta(m); err != nil {
			return nil, err
		}
	}
	if len(m.Services.Content.PostMeta) > 0 {
		if err := c.collectMedia(m); err != nil {
			return nil, err
		}
	}
	if err := c.collectOptions(m, opts.OptionNames); err != nil {
		return nil, err
	}
	if err := c.collectSchemas(m); err != nil {
		return nil, err
	}

	return m, nil
}

// collectPosts gathers published posts of the requested types, keyed by
// original ID, with the host-specific GUID stripped.
func (c *Collector) collectPosts(m *manifest.Manifest, requested []string) error {
	postTypes := requested
	if len(postTypes) == 0 {
		postTypes = append(postTypes, types.BuiltinPostTypes...)
		if c.schema != nil {
			declared, err := c.schema.DeclaredPostTypes()
			if err != nil {
				return fmt.Errorf("declared post types: %w", err)
			}
			postTypes = append(postTypes, declared...)
		}
	}

	posts, err := c.store.ListPosts(types.PostFilter{
		Types:    postTypes,
		Statuses: []string{types.StatusPublished},
	})
	if err != nil {
		return fmt.Errorf("collect posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}

	m.Services.Content.Posts = make(map[int64]*types.Post, len(posts))
	for _, post := range posts {
		record := post.Clone()
		record.GUID = "" // regenerated by the importing host
		m.Services.Content.Posts[post.ID] = record
	}
	return nil
}

// collectTerms gathers, per post, the terms of every taxonomy registered
// for that post's type, skipping taxonomies with nothing attached.
func (c *Collector) collectTerms(m *manifest.Manifest) error {
	postTerms := make(map[int64][]types.Term)
	for _, id := range sortedPostIDs(m) {
		post := m.Services.Content.Posts[id]
		taxonomies, err := c.store.TaxonomiesForPostType(post.Type)
		if err != nil {
			return fmt.Errorf("taxonomies for %q: %w", post.Type, err)
		}
		for _, taxonomy := range taxonomies {
			terms, err := c.store.TermsForPost(id, taxonomy)
			if err != nil {
				return fmt.Errorf("terms for post %d: %w", id, err)
			}
			for _, term := range terms {
				postTerms[id] = append(postTerms[id], *term)
			}
		}
	}
	if len(postTerms) > 0 {
		m.Services.Content.PostTerms = postTerms
	}
	return nil
}

// collectMeta gathers portable post metadata, flattening multi-valued
// keys to their first value.
func (c *Collector) collectMeta(m *manifest.Manifest) error {
	postMeta := make(map[int64][]types.MetaEntry)
	for _, id := range sortedPostIDs(m) {
		entries, err := c.store.PostMeta(id)
		if err != nil {
			return fmt.Errorf("meta for post %d: %w", id, err)
		}
		seen := make(map[string]bool)
		for _, entry := range entries {
			if !types.PortableMetaKey(entry.Key) || seen[entry.Key] {
				continue
			}
			seen[entry.Key] = true
			postMeta[id] = append(postMeta[id], entry)
		}
	}
	if len(postMeta) > 0 {
		m.Services.Content.PostMeta = postMeta
	}
	return nil
}

// collectOptions gathers the requested option values merged with the
// built-in defaults, keeping only options that exist on the host.
func (c *Collector) collectOptions(m *manifest.Manifest, requested []string) error {
	names := append(append([]string{}, defaultOptionNames...), requested...)

	options := make(map[string]any)
	for _, name := range names {
		value, ok, err := c.store.Option(name)
		if err != nil {
			return fmt.Errorf("collect option %q: %w", name, err)
		}
		if ok {
			options[name] = value
		}
	}
	if len(options) > 0 {
		m.Services.Content.Options = options
	}
	return nil
}

// collectSchemas gathers the schema extension's definitions, normalized
// through its export preparation.
func (c *Collector) collectSchemas(m *manifest.Manifest) error {
	if c.schema == nil {
		return nil
	}

	plugin := manifest.Plugin{Version: c.schema.Version()}
	for _, kind := range types.SchemaKinds {
		defs, err := c.schema.Definitions(kind)
		if err != nil {
			return fmt.Errorf("export %s: %w", kind, err)
		}
		if len(defs) == 0 {
			continue
		}
		prepared := make(map[string]json.RawMessage, len(defs))
		for key, def := range defs {
			out, err := c.schema.PrepareExport(kind, def)
			if err != nil {
				return fmt.Errorf("prepare %s %q: %w", kind, key, err)
			}
			prepared[key] = out
		}
		switch kind {
		case types.SchemaPostTypes:
			plugin.PostTypes = prepared
		case types.SchemaTaxonomies:
			plugin.Taxonomies = prepared
		case types.SchemaFieldGroups:
			plugin.FieldGroups = prepared
		}
	}

	m.Services.Content.Plugins = map[string]manifest.Plugin{c.schema.Name(): plugin}
	return nil
}

// sortedPostIDs returns the collected post IDs in ascending order so
// later steps run deterministically.
func sortedPostIDs(m *manifest.Manifest) []int64 {
	ids := make([]int64, 0, len(m.Services.Content.Posts))
	for id := range m.Services.Content.Posts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
