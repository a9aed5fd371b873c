// Package blueprint exposes tool-level metadata shared by the CLI and
// build tooling.
package blueprint

// Version is the tool version reported by the CLI.
const Version = "0.3.0"
