// Package integration exercises the full export/import cycle between
// two independent hosts through the public pipeline packages.
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasforge/blueprint/internal/archive"
	"github.com/atlasforge/blueprint/internal/collector"
	"github.com/atlasforge/blueprint/internal/compat"
	"github.com/atlasforge/blueprint/internal/importer"
	"github.com/atlasforge/blueprint/internal/reset"
	"github.com/atlasforge/blueprint/internal/sqlite"
	"github.com/atlasforge/blueprint/pkg/manifest"
	"github.com/atlasforge/blueprint/pkg/types"
)

// newHost attaches a fresh sqlite host with its schema provider.
func newHost(t *testing.T) (*sqlite.Store, *sqlite.Provider) {
	t.Helper()
	store := sqlite.NewStore()
	require.NoError(t, store.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { _ = store.Detach() })
	return store, sqlite.NewProvider(store)
}

// seedSource fills the source host with posts, terms, metadata, media,
// options, and schema definitions. Returns the source post ID carrying a
// thumbnail.
func seedSource(t *testing.T, store *sqlite.Store, schema *sqlite.Provider) int64 {
	t.Helper()

	require.NoError(t, schema.Import(types.SchemaPostTypes, "project",
		[]byte(`{"key":"project","slug":"project"}`)))
	require.NoError(t, schema.Import(types.SchemaTaxonomies, "genre",
		[]byte(`{"key":"genre","postTypes":["project"],"local":{"path":"/srv/source"}}`)))
	require.NoError(t, schema.Import(types.SchemaFieldGroups, "group_hero",
		[]byte(`{"key":"group_hero","fields":["headline"]}`)))

	src := filepath.Join(t.TempDir(), "hero.png")
	require.NoError(t, os.WriteFile(src, []byte("hero image"), 0o644))
	mediaID, err := store.CreateMediaFromFile(src, 0)
	require.NoError(t, err)

	postID, err := store.CreatePost(&types.Post{
		Type: "post", Title: "Welcome", Content: "Hello world",
		Status: types.StatusPublished, Slug: "welcome",
	}, 0)
	require.NoError(t, err)
	require.NoError(t, store.SetPostMeta(postID, types.MetaKeyThumbnail, mediaID))
	require.NoError(t, store.SetPostMeta(postID, "subtitle", "an opener"))
	require.NoError(t, store.SetPostMeta(postID, "_edit_lock", "123:1"))

	projectID, err := store.CreatePost(&types.Post{
		Type: "project", Title: "Atlas", Status: types.StatusPublished,
	}, 0)
	require.NoError(t, err)

	catID, err := store.CreateTerm(&types.Term{Name: "News", Taxonomy: "category"}, 0)
	require.NoError(t, err)
	require.NoError(t, store.AttachTerms(postID, []int64{catID}, false))
	genreID, err := store.CreateTerm(&types.Term{Name: "Tooling", Taxonomy: "genre"}, 0)
	require.NoError(t, err)
	require.NoError(t, store.AttachTerms(projectID, []int64{genreID}, false))

	// Drafts never travel.
	_, err = store.CreatePost(&types.Post{Type: "post", Title: "WIP", Status: "draft"}, 0)
	require.NoError(t, err)

	require.NoError(t, store.SetOption("stylesheet", "atlas"))
	require.NoError(t, store.SetOption("theme_mods", map[string]any{"accent": "blue"}))

	return postID
}

func TestExportImportRoundTrip(t *testing.T) {
	source, sourceSchema := newHost(t)
	thumbPostID := seedSource(t, source, sourceSchema)

	// Export: collect, write the manifest, pack the archive.
	workDir := filepath.Join(t.TempDir(), "work")
	c := collector.New(source, sourceSchema, workDir)
	m, err := c.Run(collector.Options{
		Blueprint:         manifest.Blueprint{Name: "Atlas Starter", Version: "1.0"},
		MinContentVersion: "6.0",
	})
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(workDir))

	archivePath := filepath.Join(t.TempDir(), m.Slug()+".zip")
	_, err = archive.Pack(workDir, m.Slug(), archivePath)
	require.NoError(t, err)

	// Import: unpack, reload the manifest, gate on compatibility, replay.
	root, err := archive.Unpack(archivePath, t.TempDir())
	require.NoError(t, err)
	loaded, err := manifest.Load(root)
	require.NoError(t, err)

	target, targetSchema := newHost(t)
	require.NoError(t, compat.Check(loaded, compat.Environment{
		ContentVersion: target.Version(),
		PluginVersions: map[string]string{targetSchema.Name(): targetSchema.Version()},
	}))

	res, err := importer.New(target, targetSchema, root).Run(loaded)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, res.PostsCreated)
	assert.Equal(t, 2, res.TermsCreated)
	assert.Equal(t, 1, res.MediaImported)
	assert.Equal(t, 3, res.SchemasImported)

	// Published content arrived intact under its original IDs.
	post, err := target.GetPost(thumbPostID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", post.Title)
	assert.Equal(t, "Hello world", post.Content)

	terms, err := target.TermsForPost(thumbPostID, "category")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "News", terms[0].Name)

	// The draft stayed home.
	posts, err := target.ListPosts(types.PostFilter{})
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	// Portable meta came across, host-local meta did not, and the
	// thumbnail resolves to a real media payload on the target.
	meta, err := target.PostMeta(thumbPostID)
	require.NoError(t, err)
	byKey := make(map[string]any, len(meta))
	for _, entry := range meta {
		byKey[entry.Key] = entry.Value
	}
	assert.Contains(t, byKey, "subtitle")
	assert.NotContains(t, byKey, "_edit_lock")

	thumbID := int64(byKey[types.MetaKeyThumbnail].(float64))
	path, err := target.MediaFilePath(thumbID)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hero image", string(data))

	// Options and schema definitions landed; host-local schema state
	// was stripped in transit.
	v, _, err := target.Option("stylesheet")
	require.NoError(t, err)
	assert.Equal(t, "atlas", v)

	defs, err := targetSchema.Definitions(types.SchemaTaxonomies)
	require.NoError(t, err)
	require.Contains(t, defs, "genre")
	assert.JSONEq(t, `{"key":"genre","postTypes":["project"]}`, string(defs["genre"]))
}

func TestImportIsRepeatable(t *testing.T) {
	source, sourceSchema := newHost(t)
	seedSource(t, source, sourceSchema)

	workDir := filepath.Join(t.TempDir(), "work")
	m, err := collector.New(source, sourceSchema, workDir).Run(collector.Options{
		Blueprint: manifest.Blueprint{Name: "Atlas Starter"},
	})
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(workDir))

	target, targetSchema := newHost(t)
	im := importer.New(target, targetSchema, workDir)

	first, err := im.Run(m)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TermsCreated)

	// A second replay reuses the existing terms instead of duplicating.
	second, err := im.Run(m)
	require.NoError(t, err)
	assert.Equal(t, 0, second.TermsCreated)
	assert.Equal(t, 2, second.TermsSkipped)

	terms, err := target.ListTerms("")
	require.NoError(t, err)
	assert.Len(t, terms, 2)
}

func TestCompatGateBlocksIncompatibleArchive(t *testing.T) {
	source, sourceSchema := newHost(t)
	seedSource(t, source, sourceSchema)

	workDir := filepath.Join(t.TempDir(), "work")
	m, err := collector.New(source, sourceSchema, workDir).Run(collector.Options{
		Blueprint:         manifest.Blueprint{Name: "Future Blueprint"},
		MinContentVersion: "99.0",
	})
	require.NoError(t, err)

	target, _ := newHost(t)
	err = compat.Check(m, compat.Environment{ContentVersion: target.Version()})
	var cerr *compat.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, compat.HostVersionTooLow, cerr.Kind)
}

func TestResetAfterImport(t *testing.T) {
	source, sourceSchema := newHost(t)
	seedSource(t, source, sourceSchema)

	workDir := filepath.Join(t.TempDir(), "work")
	m, err := collector.New(source, sourceSchema, workDir).Run(collector.Options{
		Blueprint: manifest.Blueprint{Name: "Atlas Starter"},
	})
	require.NoError(t, err)

	target, targetSchema := newHost(t)
	_, err = importer.New(target, targetSchema, workDir).Run(m)
	require.NoError(t, err)

	// Default reset unwinds only what the schema extension manages.
	counts, err := reset.New(target, targetSchema).Run(false)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Posts, "the project")
	assert.Equal(t, 1, counts.Terms, "the genre term")
	assert.Equal(t, 1, counts.PostTypes)
	assert.Equal(t, 1, counts.Taxonomies)
	assert.Equal(t, 1, counts.FieldGroups)

	posts, err := target.ListPosts(types.PostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Welcome", posts[0].Title)

	// Full reset empties the host.
	_, err = reset.New(target, targetSchema).Run(true)
	require.NoError(t, err)
	posts, err = target.ListPosts(types.PostFilter{})
	require.NoError(t, err)
	assert.Empty(t, posts)
}
