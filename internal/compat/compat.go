// Package compat implements the version compatibility gate: a pure check
// of a manifest's declared minimum versions against the running
// environment, executed before an import proceeds.
package compat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/atlasforge/blueprint/pkg/manifest"
)

// FailureKind names the single requirement a gate failure reports.
type FailureKind string

const (
	// HostVersionTooLow: the host runtime is older than the manifest's
	// minimum content version.
	HostVersionTooLow FailureKind = "host-version"

	// PluginMissing: a declared extension is not active on the host.
	PluginMissing FailureKind = "plugin-missing"

	// PluginVersionTooLow: an active extension is older than declared.
	PluginVersionTooLow FailureKind = "plugin-version"
)

// Error names exactly one failing requirement. Checks stop at the first
// failure so the user-facing message is deterministic.
type Error struct {
	Kind     FailureKind
	Plugin   string // set for plugin kinds
	Required string
	Actual   string
}

func (e *Error) Error() string {
	switch e.Kind {
	case HostVersionTooLow:
		return fmt.Sprintf("blueprint requires host version %s or newer, found %s", e.Required, e.Actual)
	case PluginMissing:
		return fmt.Sprintf("blueprint requires plugin %q, which is not active", e.Plugin)
	case PluginVersionTooLow:
		return fmt.Sprintf("blueprint requires plugin %q version %s or newer, found %s", e.Plugin, e.Required, e.Actual)
	}
	return "incompatible blueprint"
}

// Environment describes the running host as seen by the gate.
type Environment struct {
	// ContentVersion is the host runtime version.
	ContentVersion string

	// PluginVersions maps active extension name to its version.
	PluginVersions map[string]string

	// Active reports whether a named extension is active. When nil,
	// presence in PluginVersions decides.
	Active func(name string) bool
}

func (env Environment) active(name string) bool {
	if env.Active != nil {
		return env.Active(name)
	}
	_, ok := env.PluginVersions[name]
	return ok
}

// Check validates the manifest's requirements against the environment.
// The host version is checked first, then each declared plugin in sorted
// name order; the first failure is returned alone.
func Check(m *manifest.Manifest, env Environment) error {
	content := m.Services.Content

	if content.Version != "" && CompareVersions(env.ContentVersion, content.Version) < 0 {
		return &Error{
			Kind:     HostVersionTooLow,
			Required: content.Version,
			Actual:   env.ContentVersion,
		}
	}

	names := make([]string, 0, len(content.Plugins))
	for name := range content.Plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		plugin := content.Plugins[name]
		if !env.active(name) {
			return &Error{Kind: PluginMissing, Plugin: name, Required: plugin.Version}
		}
		actual := env.PluginVersions[name]
		if plugin.Version != "" && CompareVersions(actual, plugin.Version) < 0 {
			return &Error{
				Kind:     PluginVersionTooLow,
				Plugin:   name,
				Required: plugin.Version,
				Actual:   actual,
			}
		}
	}

	return nil
}

// CompareVersions compares dotted versions segment-wise numerically:
// -1 when a < b, 0 when equal, 1 when a > b. Missing segments count as
// zero, so "6.10" > "6.9" and "1.0" == "1".
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(strings.TrimSpace(as[i]))
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(strings.TrimSpace(bs[i]))
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
