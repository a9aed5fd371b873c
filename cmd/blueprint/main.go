// Package main provides the blueprint CLI: export a site's structured
// content into a portable archive, import such an archive onto another
// host, and reset managed content.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitSysError)
	}
}
