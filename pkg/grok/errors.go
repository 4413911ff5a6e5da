package grok

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them; the typed errors below
// match their sentinel.
var (
	// ErrInvalidPattern is returned when a pattern name or fragment is blank,
	// or when a merge source is nil, empty or contains blank entries.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrEmptyPattern is returned when compiling a blank expression.
	ErrEmptyPattern = errors.New("expression should not be empty")

	// ErrRecursionLimit is returned when macro expansion exceeds the
	// configured ceiling, typically because a fragment refers to itself.
	ErrRecursionLimit = errors.New("expansion limit exceeded")

	// ErrPatternNotFound is returned when expansion produces an empty expression.
	ErrPatternNotFound = errors.New("pattern not found")

	// ErrUnknownPattern is returned when a reference names a pattern that is
	// not in the registry.
	ErrUnknownPattern = errors.New("unknown pattern")

	// ErrNotCompiled is returned by Grok.Match before any successful Compile.
	ErrNotCompiled = errors.New("no expression compiled")
)

// RecursionLimitError reports an expansion that did not terminate within
// Limit reference substitutions.
type RecursionLimitError struct {
	Expression string // original root expression
	Limit      int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("deep recursion compiling %q: more than %d expansions", e.Expression, e.Limit)
}

// Unwrap returns ErrRecursionLimit.
func (e *RecursionLimitError) Unwrap() error {
	return ErrRecursionLimit
}

// UnknownPatternError reports a macro reference to an unregistered pattern.
type UnknownPatternError struct {
	Name       string // referenced pattern name
	Reference  string // reference text as it appeared, e.g. "%{IP:client}"
	Expression string // original root expression
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("unknown pattern %q in %s (compiling %q)", e.Name, e.Reference, e.Expression)
}

// Unwrap returns ErrUnknownPattern.
func (e *UnknownPatternError) Unwrap() error {
	return ErrUnknownPattern
}
