// Package patterns provides the base pattern library bundled with grokkit:
// numbers, words, network addresses, paths, URIs, timestamps, log levels and
// the common Apache and syslog line formats.
package patterns

import (
	_ "embed"
	"strings"

	"github.com/grokkit/grokkit/pkg/grok"
)

//go:embed base.grok
var baseFile string

// Source returns the bundled pattern file in the "NAME FRAGMENT" text format.
func Source() string {
	return baseFile
}

// LoadInto registers the bundled patterns in reg, replacing definitions with
// the same names.
func LoadInto(reg *grok.Registry) error {
	return reg.Load(strings.NewReader(baseFile))
}

// Registry returns a new registry holding the bundled patterns.
func Registry() *grok.Registry {
	reg := grok.NewRegistry()
	// The embedded file is never read from disk, so loading cannot fail.
	_ = LoadInto(reg)
	return reg
}
