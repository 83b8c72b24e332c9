// Package pcalc is the module root. It only carries build metadata; the
// language itself lives under internal/.
package pcalc

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionRaw string

// Version returns the embedded version string from VERSION.
func Version() string {
	return strings.TrimSpace(versionRaw)
}

// Banner is the tool name and version, e.g. "pcalc 0.1.0".
func Banner() string {
	return "pcalc " + Version()
}
