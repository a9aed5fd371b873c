// Reset command: destructive teardown of managed content.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlasforge/blueprint/internal/reset"
	"github.com/atlasforge/blueprint/internal/sqlite"
)

var (
	resetConfirm bool
	resetAll     bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete managed content in dependency order",
	Long: `Reset deletes taxonomy terms, taxonomy schemas, content entities,
media, post-type schemas, and field-group schemas, in that order.

By default only entities of schema-managed types are removed. With
--all, every content entity and media item on the host is removed too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirm {
			fmt.Fprintln(os.Stderr, "reset: pass --confirm to delete content")
			os.Exit(exitUserError)
		}

		store, err := attachStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "reset:", err)
			os.Exit(exitSysError)
		}
		defer store.Detach()

		counts, err := reset.New(store, sqlite.NewProvider(store)).Run(resetAll)
		if err != nil {
			fmt.Fprintln(os.Stderr, "reset:", err)
			os.Exit(exitSysError)
		}

		fmt.Printf("Deleted %d terms, %d taxonomies, %d posts, %d media, %d post types, %d field groups\n",
			counts.Terms, counts.Taxonomies, counts.Posts, counts.Media,
			counts.PostTypes, counts.FieldGroups)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "confirm", false, "confirm the destructive operation")
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "also delete content and media outside managed schemas")
}
