// Shared helpers for blueprint CLI commands.
package main

import (
	"fmt"

	"github.com/atlasforge/blueprint/internal/sqlite"
	"github.com/atlasforge/blueprint/pkg/types"
)

// attachStore resolves the data directory, creates the SQLite host
// store, and attaches it. The caller must defer store.Detach().
func attachStore() (*sqlite.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	return store, nil
}
