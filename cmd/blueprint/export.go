// Export command: snapshot the site's content into a blueprint archive.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlasforge/blueprint/internal/archive"
	"github.com/atlasforge/blueprint/internal/collector"
	"github.com/atlasforge/blueprint/internal/sqlite"
	"github.com/atlasforge/blueprint/pkg/manifest"
)

var (
	exportName        string
	exportDescription string
	exportVersion     string
	exportMinContent  string
	exportPostTypes   string
	exportOptions     string
	exportOutput      string
	exportReveal      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the site's content into a blueprint archive",
	Long: `Export snapshots posts, terms, metadata, media, options, and schema
definitions into a single portable zip archive that import can replay
onto another host.

Example:
  blueprint export --name "Atlas Starter" --post-types post,page,project
  blueprint export --name demo --options blogname,blogdescription -o demo.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		opts := collector.Options{
			Blueprint: manifest.Blueprint{
				Name:        exportName,
				Description: exportDescription,
				Version:     exportVersion,
			},
			MinContentVersion: exportMinContent,
			PostTypes:         splitList(exportPostTypes),
			OptionNames:       splitList(exportOptions),
		}

		workDir := filepath.Join(os.TempDir(), "blueprint-export")
		c := collector.New(store, sqlite.NewProvider(store), workDir)

		m, err := c.Run(opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitUserError)
		}
		if err := m.WriteFile(workDir); err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}

		out := exportOutput
		if out == "" {
			out = m.Slug() + ".zip"
		}
		out, err = filepath.Abs(out)
		if err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}

		if _, err := archive.Pack(workDir, m.Slug(), out); err != nil {
			fmt.Fprintln(os.Stderr, "export:", err)
			os.Exit(exitSysError)
		}

		if exportReveal {
			// Bare path for shell consumption.
			fmt.Println(out)
		} else {
			fmt.Printf("Exported blueprint %q to %s\n", m.Blueprint.Name, out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportName, "name", "", "blueprint name (required)")
	exportCmd.Flags().StringVar(&exportDescription, "description", "", "blueprint description")
	exportCmd.Flags().StringVar(&exportVersion, "blueprint-version", "", "blueprint version")
	exportCmd.Flags().StringVar(&exportMinContent, "min-content-version", "", "minimum host version required on import")
	exportCmd.Flags().StringVar(&exportPostTypes, "post-types", "", "comma-separated post types (default: built-ins plus schema-declared)")
	exportCmd.Flags().StringVar(&exportOptions, "options", "", "comma-separated extra option names to export")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "archive output path (default: <slug>.zip)")
	exportCmd.Flags().BoolVar(&exportReveal, "reveal", false, "print only the archive path on success")

	exportCmd.MarkFlagRequired("name")
}

// splitList parses a comma-separated flag value, trimming whitespace and
// dropping empty items.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
