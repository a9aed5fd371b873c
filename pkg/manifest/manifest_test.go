package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasforge/blueprint/pkg/types"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Atlas Starter", "atlas-starter"},
		{"  My -- Blueprint!  ", "my-blueprint"},
		{"UPPER case 2", "upper-case-2"},
		{"", "blueprint"},
		{"!!!", "blueprint"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.name), "Slugify(%q)", tt.name)
	}
}

func TestMediaPathEmbedsID(t *testing.T) {
	// Identical basenames from different media IDs never collide.
	a := MediaPath(10, "photo.jpg")
	b := MediaPath(20, "photo.jpg")

	assert.Equal(t, "media/10/photo.jpg", a)
	assert.Equal(t, "media/20/photo.jpg", b)
	assert.NotEqual(t, a, b)
}

func TestBlueprintValidate(t *testing.T) {
	assert.Error(t, Blueprint{}.Validate())
	assert.Error(t, Blueprint{Name: "x", Version: "not a version"}.Validate())
	assert.NoError(t, Blueprint{Name: "x"}.Validate())
	assert.NoError(t, Blueprint{Name: "x", Version: "1.2.3"}.Validate())
}

func TestLoadNotFoundVersusParseError(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))
	_, err = Load(dir)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m := New(Blueprint{Name: "Atlas Starter", Version: "1.0"})
	m.Services.Content.Version = "6.9"
	m.Services.Content.Theme = "atlas"
	m.Services.Content.Posts = map[int64]*types.Post{
		12: {Type: "post", Title: "Hello", Content: "World", Status: types.StatusPublished},
	}
	m.Services.Content.PostTerms = map[int64][]types.Term{
		12: {{TermID: 3, Name: "News", Taxonomy: "category"}},
	}
	m.Services.Content.PostMeta = map[int64][]types.MetaEntry{
		12: {{Key: types.MetaKeyThumbnail, Value: float64(7)}},
	}
	m.Services.Content.Media = map[int64]string{7: "media/7/pic.png"}
	m.Services.Content.Options = map[string]any{"stylesheet": "atlas"}
	m.Services.Content.Plugins = map[string]Plugin{
		"schemakit": {
			Version:   "1.2",
			PostTypes: map[string]json.RawMessage{"project": json.RawMessage(`{"key":"project"}`)},
		},
	}

	require.NoError(t, m.WriteFile(dir))

	got, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, SchemaVersion, got.Schema)
	assert.Equal(t, "atlas-starter", got.Slug())
	assert.Equal(t, "Hello", got.Services.Content.Posts[12].Title)
	assert.Equal(t, "media/7/pic.png", got.Services.Content.Media[7])
	assert.Equal(t, int64(3), got.Services.Content.PostTerms[12][0].TermID)
	assert.Len(t, got.Services.Content.Plugins["schemakit"].PostTypes, 1)
}

func TestIntegerKeysMarshalAsStrings(t *testing.T) {
	m := New(Blueprint{Name: "demo"})
	m.Services.Content.Posts = map[int64]*types.Post{
		42: {Type: "post", Title: "T", Status: types.StatusPublished},
	}

	data, err := m.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"42"`)
}

func TestPluginDefinitions(t *testing.T) {
	p := Plugin{
		PostTypes:   map[string]json.RawMessage{"a": nil},
		Taxonomies:  map[string]json.RawMessage{"b": nil},
		FieldGroups: map[string]json.RawMessage{"c": nil},
	}
	assert.Contains(t, p.Definitions(types.SchemaPostTypes), "a")
	assert.Contains(t, p.Definitions(types.SchemaTaxonomies), "b")
	assert.Contains(t, p.Definitions(types.SchemaFieldGroups), "c")
}
