// Version command for the blueprint CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlasforge/blueprint/pkg/blueprint"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("blueprint v" + blueprint.Version)
	},
}
