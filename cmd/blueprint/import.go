// Import command: replay a blueprint archive onto this host.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atlasforge/blueprint/internal/archive"
	"github.com/atlasforge/blueprint/internal/compat"
	"github.com/atlasforge/blueprint/internal/importer"
	"github.com/atlasforge/blueprint/internal/sqlite"
	"github.com/atlasforge/blueprint/pkg/manifest"
)

var importCmd = &cobra.Command{
	Use:   "import <path-or-url>",
	Short: "Import a blueprint archive onto this host",
	Long: `Import replays a blueprint archive: schemas first, then posts, terms,
tag assignments, media, metadata, and options, rewriting every
cross-reference to the IDs this host actually assigned.

The argument may be a local archive file, an already-unpacked directory
(detected by the absence of a file extension), or an http(s) URL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveArchiveArg(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitUserError)
		}

		m, err := manifest.Load(dir)
		if err != nil {
			var parseErr *manifest.ParseError
			switch {
			case errors.Is(err, manifest.ErrNotFound):
				fmt.Fprintf(os.Stderr, "import: no %s found in %s\n", manifest.FileName, dir)
			case errors.As(err, &parseErr):
				fmt.Fprintln(os.Stderr, "import: manifest is not valid JSON:", parseErr.Err)
			default:
				fmt.Fprintln(os.Stderr, "import:", err)
			}
			os.Exit(exitUserError)
		}

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()
		provider := sqlite.NewProvider(store)

		env := compat.Environment{
			ContentVersion: store.Version(),
			PluginVersions: map[string]string{provider.Name(): provider.Version()},
		}
		if err := compat.Check(m, env); err != nil {
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitUserError)
		}

		res, err := importer.New(store, provider, dir).Run(m)
		reportResult(res)
		if err != nil {
			fmt.Fprintln(os.Stderr, "import:", err)
			os.Exit(exitSysError)
		}
		return nil
	},
}

// resolveArchiveArg turns the command argument into an unpacked archive
// directory: remote URLs are fetched first, file paths (anything with an
// extension) are unpacked, and extensionless paths are used as-is.
func resolveArchiveArg(arg string) (string, error) {
	tmp, err := os.MkdirTemp("", "blueprint-import-")
	if err != nil {
		return "", err
	}

	local := arg
	if archive.IsRemote(arg) {
		local, err = archive.Fetch(arg, tmp)
		if err != nil {
			return "", err
		}
	}

	if filepath.Ext(local) == "" {
		// Already-unpacked folder input.
		return local, nil
	}
	return archive.Unpack(local, tmp)
}

// reportResult prints the run summary and any accumulated warnings.
// Warnings do not fail the command.
func reportResult(res *importer.Result) {
	if res == nil {
		return
	}
	fmt.Printf("Imported %d posts, %d terms (%d already present), %d media, %d meta entries, %d options, %d schemas\n",
		res.PostsCreated, res.TermsCreated, res.TermsSkipped,
		res.MediaImported, res.MetaWritten, res.OptionsWritten, res.SchemasImported)
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
