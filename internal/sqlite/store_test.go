package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasforge/blueprint/pkg/types"
)

// newTestStore attaches a store to a fresh temp directory and detaches
// it when the test finishes.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { _ = s.Detach() })
	return s
}

func TestAttachDetachLifecycle(t *testing.T) {
	s := NewStore()
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	require.NoError(t, s.Attach(config))
	assert.ErrorIs(t, s.Attach(config), types.ErrAlreadyAttached)

	require.NoError(t, s.Detach())
	// Detach is idempotent.
	require.NoError(t, s.Detach())

	_, err := s.GetPost(1)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestAttachRejectsInvalidConfig(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Attach(types.Config{}), types.ErrBackendEmpty)
	assert.ErrorIs(t, s.Attach(types.Config{Backend: "bogus"}), types.ErrBackendUnknown)
}

func TestReattachSeesExistingData(t *testing.T) {
	dataDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dataDir}

	s := NewStore()
	require.NoError(t, s.Attach(config))
	id, err := s.CreatePost(&types.Post{Type: "post", Title: "Persistent", Status: types.StatusPublished}, 0)
	require.NoError(t, err)
	require.NoError(t, s.Detach())

	s2 := NewStore()
	require.NoError(t, s2.Attach(config))
	defer s2.Detach()

	got, err := s2.GetPost(id)
	require.NoError(t, err)
	assert.Equal(t, "Persistent", got.Title)
}

func TestVersionAndThemeDefaults(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, "6.9", s.Version())
	assert.Equal(t, "default", s.Theme())

	require.NoError(t, s.SetOption("core_version", "7.1"))
	require.NoError(t, s.SetOption("stylesheet", "atlas"))

	assert.Equal(t, "7.1", s.Version())
	assert.Equal(t, "atlas", s.Theme())
}
