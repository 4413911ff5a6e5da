package grok

import (
	"fmt"
	"io"
	"strings"
)

// Grok bundles a Registry, a Compiler, the most recently compiled Expression
// and a lazily created Discoverer behind one stateful handle.
//
// Grok is single-writer: do not call Compile or any pattern-mutating method
// concurrently with anything else on the same instance. The Expression
// returned by Compile is immutable and may be matched from many goroutines.
type Grok struct {
	registry *Registry
	compiler *Compiler
	opts     []Option
	active   *Expression
	disco    *Discoverer
}

// New returns a Grok with an empty registry.
func New(opts ...Option) (*Grok, error) {
	reg := NewRegistry()
	c, err := NewCompiler(reg, opts...)
	if err != nil {
		return nil, err
	}
	return &Grok{registry: reg, compiler: c, opts: opts}, nil
}

// NewFromFile returns a Grok loaded with the pattern file at path and, when
// expr is not blank, compiles expr.
//
// Example:
//
//	g, err := grok.NewFromFile("patterns/base", "%{COMMONAPACHELOG}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, _ := g.Match(line)
func NewFromFile(path, expr string, opts ...Option) (*Grok, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: pattern file path is empty", ErrInvalidPattern)
	}
	g, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := g.registry.LoadFile(path); err != nil {
		return nil, err
	}
	if strings.TrimSpace(expr) != "" {
		if _, err := g.Compile(expr); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddPattern registers fragment under name.
func (g *Grok) AddPattern(name, fragment string) error {
	return g.registry.Add(name, fragment)
}

// AddPatternsFromReader registers every definition read from r.
func (g *Grok) AddPatternsFromReader(r io.Reader) error {
	return g.registry.Load(r)
}

// AddPatternsFromFile registers every definition in the file at path.
func (g *Grok) AddPatternsFromFile(path string) error {
	return g.registry.LoadFile(path)
}

// MergePatterns copies patterns into the registry. See Registry.Merge.
func (g *Grok) MergePatterns(patterns map[string]string) error {
	return g.registry.Merge(patterns)
}

// Patterns returns a copy of the registered definitions.
func (g *Grok) Patterns() map[string]string {
	return g.registry.Patterns()
}

// Registry returns the underlying registry.
func (g *Grok) Registry() *Registry {
	return g.registry
}

// HasPatterns reports whether any pattern is registered.
func (g *Grok) HasPatterns() bool {
	return g.registry.Len() > 0
}

// Compile compiles expr and makes it the active expression used by Match.
// On error the previously active expression is kept.
func (g *Grok) Compile(expr string) (*Expression, error) {
	e, err := g.compiler.Compile(expr)
	if err != nil {
		return nil, err
	}
	g.active = e
	return e, nil
}

// Expression returns the active expression, or nil before the first
// successful Compile.
func (g *Grok) Expression() *Expression {
	return g.active
}

// Flattened returns the active flattened expression, or "".
func (g *Grok) Flattened() string {
	if g.active == nil {
		return ""
	}
	return g.active.Flattened()
}

// Original returns the active root expression, or "".
func (g *Grok) Original() string {
	if g.active == nil {
		return ""
	}
	return g.active.Original()
}

// Match searches text with the active expression.
// Returns ErrNotCompiled if no expression has been compiled.
func (g *Grok) Match(text string) (*Match, error) {
	if g.active == nil {
		return nil, ErrNotCompiled
	}
	return g.active.Match(text), nil
}

// FieldNameOf returns the field name of slot in the active capture table.
func (g *Grok) FieldNameOf(slot int) (string, bool) {
	if g.active == nil {
		return "", false
	}
	return g.active.FieldName(slot)
}

// CaptureTable returns the active capture table, or nil.
func (g *Grok) CaptureTable() CaptureTable {
	if g.active == nil {
		return nil
	}
	return g.active.Captures()
}

// Discover guesses an expression for the sample text using the registered
// patterns. The Discoverer is created on first use and reused afterwards.
func (g *Grok) Discover(text string) string {
	if g.disco == nil {
		// Options were validated by New.
		g.disco, _ = NewDiscoverer(g.registry, g.opts...)
	}
	return g.disco.Discover(text)
}
