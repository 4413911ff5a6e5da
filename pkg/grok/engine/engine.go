// Package engine adapts regular-expression implementations to the small
// surface the grok compiler needs: compile a flattened expression once, then
// run unanchored searches that report submatch offsets and group names.
package engine

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownEngine is returned by ByName for names that are not registered.
var ErrUnknownEngine = errors.New("unknown regex engine")

// Engine compiles flattened expressions into executable programs.
type Engine interface {
	// Name identifies the engine (e.g. "stdlib").
	Name() string

	// Compile compiles expr. Syntax errors are returned exactly as the
	// underlying implementation produced them.
	Compile(expr string) (Program, error)
}

// Program is a compiled expression.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Program interface {
	// String returns the source text the program was compiled from.
	String() string

	// NumSubexp returns the number of capturing groups.
	NumSubexp() int

	// SubexpNames returns the group names indexed by group number.
	// Index 0 is the whole match and always "". Unnamed groups are "".
	SubexpNames() []string

	// FindStringSubmatchIndex returns byte offset pairs for the leftmost match
	// and each group, following the regexp package convention: nil when there
	// is no match, -1 for groups that did not participate.
	FindStringSubmatchIndex(s string) []int
}

// Default is the engine used when none is configured.
var Default Engine = Stdlib{}

var registered = map[string]Engine{
	"stdlib":  Stdlib{},
	"regexp2": Regexp2{},
	"coregex": Coregex{},
}

// ByName returns the engine registered under name.
func ByName(name string) (Engine, error) {
	if name == "" {
		return Default, nil
	}
	e, ok := registered[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownEngine, name, Names())
	}
	return e, nil
}

// Names returns the registered engine names, sorted.
func Names() []string {
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
