// Package reset implements the destructive teardown companion to
// import: it deletes managed content in dependency order so earlier
// deletes never orphan references held by entities deleted later.
package reset

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/atlasforge/blueprint/pkg/types"
)

// Counts reports what one reset run deleted, per entity kind.
type Counts struct {
	Terms       int
	Taxonomies  int
	Posts       int
	Media       int
	PostTypes   int
	FieldGroups int
}

// Runner executes reset runs against a host.
type Runner struct {
	store  types.ContentStore
	schema types.SchemaProvider // nil when the extension is absent
}

// New creates a reset runner.
func New(store types.ContentStore, schema types.SchemaProvider) *Runner {
	return &Runner{store: store, schema: schema}
}

// Run deletes, in order: taxonomy terms, taxonomy schemas, content
// entities, media, post-type schemas, field-group schemas. The default
// scope is limited to entities of schema-managed types; all widens it to
// every content entity and media item on the host.
func (r *Runner) Run(all bool) (Counts, error) {
	var counts Counts

	managedTaxonomies, managedPostTypes, err := r.managed()
	if err != nil {
		return counts, err
	}

	if err := r.deleteTerms(all, managedTaxonomies, &counts); err != nil {
		return counts, err
	}
	if err := r.deleteSchemas(types.SchemaTaxonomies, &counts.Taxonomies); err != nil {
		return counts, err
	}
	if err := r.deletePosts(all, managedPostTypes, &counts); err != nil {
		return counts, err
	}
	if err := r.deleteMedia(all, &counts); err != nil {
		return counts, err
	}
	if err := r.deleteSchemas(types.SchemaPostTypes, &counts.PostTypes); err != nil {
		return counts, err
	}
	if err := r.deleteSchemas(types.SchemaFieldGroups, &counts.FieldGroups); err != nil {
		return counts, err
	}

	return counts, nil
}

// managed returns the taxonomy names and post-type slugs declared by the
// schema extension.
func (r *Runner) managed() (map[string]bool, map[string]bool, error) {
	taxonomies := make(map[string]bool)
	postTypes := make(map[string]bool)
	if r.schema == nil {
		return taxonomies, postTypes, nil
	}

	defs, err := r.schema.Definitions(types.SchemaTaxonomies)
	if err != nil {
		return nil, nil, fmt.Errorf("managed taxonomies: %w", err)
	}
	for key := range defs {
		taxonomies[key] = true
	}

	declared, err := r.schema.DeclaredPostTypes()
	if err != nil {
		return nil, nil, fmt.Errorf("managed post types: %w", err)
	}
	for _, slug := range declared {
		postTypes[slug] = true
	}
	return taxonomies, postTypes, nil
}

func (r *Runner) deleteTerms(all bool, managed map[string]bool, counts *Counts) error {
	terms, err := r.store.ListTerms("")
	if err != nil {
		return fmt.Errorf("list terms: %w", err)
	}
	for _, term := range terms {
		if !all && !managed[term.Taxonomy] {
			continue
		}
		if err := r.store.DeleteTerm(term.TermID); err != nil {
			return fmt.Errorf("delete term %d: %w", term.TermID, err)
		}
		counts.Terms++
	}
	return nil
}

// deletePosts removes content entities, collecting their thumbnail
// references first so the media pass can honor the default scope.
func (r *Runner) deletePosts(all bool, managed map[string]bool, counts *Counts) error {
	posts, err := r.store.ListPosts(types.PostFilter{})
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	for _, post := range posts {
		if !all && !managed[post.Type] {
			continue
		}
		if !all {
			if err := r.deletePostThumbnail(post.ID, counts); err != nil {
				return err
			}
		}
		if err := r.store.DeletePost(post.ID); err != nil {
			return fmt.Errorf("delete post %d: %w", post.ID, err)
		}
		counts.Posts++
	}
	return nil
}

// deletePostThumbnail removes the media entity a post's thumbnail meta
// references, when it still exists.
func (r *Runner) deletePostThumbnail(postID int64, counts *Counts) error {
	entries, err := r.store.PostMeta(postID)
	if err != nil {
		return fmt.Errorf("meta for post %d: %w", postID, err)
	}
	for _, entry := range entries {
		if entry.Key != types.MetaKeyThumbnail {
			continue
		}
		mediaID := cast.ToInt64(entry.Value)
		if mediaID <= 0 {
			continue
		}
		err := r.store.DeleteMedia(mediaID)
		if err == nil {
			counts.Media++
		}
		// Already-deleted media is fine; two posts may share a thumbnail.
	}
	return nil
}

func (r *Runner) deleteMedia(all bool, counts *Counts) error {
	if !all {
		return nil
	}
	media, err := r.store.ListMedia()
	if err != nil {
		return fmt.Errorf("list media: %w", err)
	}
	for _, m := range media {
		if err := r.store.DeleteMedia(m.ID); err != nil {
			return fmt.Errorf("delete media %d: %w", m.ID, err)
		}
		counts.Media++
	}
	return nil
}

func (r *Runner) deleteSchemas(kind types.SchemaKind, count *int) error {
	if r.schema == nil {
		return nil
	}
	defs, err := r.schema.Definitions(kind)
	if err != nil {
		return fmt.Errorf("list %s: %w", kind, err)
	}
	for key := range defs {
		if err := r.schema.Delete(kind, key); err != nil {
			return fmt.Errorf("delete %s %q: %w", kind, key, err)
		}
		*count++
	}
	return nil
}
