package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/grokkit/grokkit/pkg/grok"
)

// Mode specifies how a Parser combines the expressions of a library.
type Mode int

const (
	// ModeAll matches every expression and returns a record for each
	// expression that matched (default).
	ModeAll Mode = iota

	// ModeFirst stops at the first expression that matches.
	ModeFirst
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeFirst:
		return "first"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Record is one expression's match within a line.
type Record struct {
	// ID is the expression ID from the library.
	ID string `json:"id"`

	// Start and End are the byte offsets of the match within the line.
	Start int `json:"start"`
	End   int `json:"end"`

	// Fields holds each field's first participating value.
	// Nil when the expression has no captures.
	Fields map[string]string `json:"fields,omitempty"`
}

// Result represents the result of parsing a line.
type Result struct {
	// Records are in library order.
	Records []Record

	// Matched reports whether any expression matched.
	Matched bool
}

// Option configures a Parser.
type Option func(*parserConfig)

type parserConfig struct {
	registry *grok.Registry
	mode     Mode
	grokOpts []grok.Option
}

// WithRegistry sets the base registry the library's patterns are added to.
// The registry is cloned, so the caller's copy is never modified.
func WithRegistry(reg *grok.Registry) Option {
	return func(c *parserConfig) {
		c.registry = reg
	}
}

// WithMode sets how expressions are combined. Default is ModeAll.
func WithMode(m Mode) Option {
	return func(c *parserConfig) {
		c.mode = m
	}
}

// WithCompilerOptions passes options such as the engine or the expansion
// limit through to the compiler.
func WithCompilerOptions(opts ...grok.Option) Option {
	return func(c *parserConfig) {
		c.grokOpts = append(c.grokOpts, opts...)
	}
}

// Parser matches lines against every expression of a library.
//
// Parser is safe for concurrent use by multiple goroutines.
type Parser struct {
	entries []compiledEntry
	mode    Mode
}

type compiledEntry struct {
	id   string
	expr *grok.Expression
}

// NewParser compiles every expression of lib.
// Returns a *DefinitionError wrapping the compile error if any expression
// fails to compile.
//
// Example:
//
//	lib, err := library.Load("nginx.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	parser, err := library.NewParser(lib, library.WithRegistry(patterns.Registry()))
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewParser(lib *Library, opts ...Option) (*Parser, error) {
	if lib == nil {
		return nil, errors.New("library is nil")
	}

	cfg := &parserConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.mode != ModeAll && cfg.mode != ModeFirst {
		return nil, fmt.Errorf("invalid mode: %v", cfg.mode)
	}

	reg := grok.NewRegistry()
	if cfg.registry != nil {
		reg = cfg.registry.Clone()
	}
	if err := lib.LoadInto(reg); err != nil {
		return nil, err
	}

	compiler, err := grok.NewCompiler(reg, cfg.grokOpts...)
	if err != nil {
		return nil, err
	}

	entries := make([]compiledEntry, 0, len(lib.Expressions))
	for i, e := range lib.Expressions {
		expr, err := compiler.Compile(e.Expression)
		if err != nil {
			return nil, &DefinitionError{
				Section: "expressions",
				Index:   i,
				Name:    e.ID,
				Field:   "expression",
				Message: fmt.Sprintf("invalid expression: %v", err),
				Cause:   err,
			}
		}
		entries = append(entries, compiledEntry{id: e.ID, expr: expr})
	}

	return &Parser{entries: entries, mode: cfg.mode}, nil
}

// NewParserFromFile is a convenience function that loads a library file and
// creates a Parser in one step.
func NewParserFromFile(path string, opts ...Option) (*Parser, error) {
	lib, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewParser(lib, opts...)
}

// Len returns the number of compiled expressions.
func (p *Parser) Len() int {
	return len(p.entries)
}

// Expression returns the compiled expression with the given ID.
func (p *Parser) Expression(id string) (*grok.Expression, bool) {
	for _, e := range p.entries {
		if e.id == id {
			return e.expr, true
		}
	}
	return nil, false
}

// ParseLine matches line against the library's expressions in order.
// Returns an error only if ctx is done, together with the records collected
// before cancellation.
func (p *Parser) ParseLine(ctx context.Context, line string) (Result, error) {
	var records []Record

	for _, e := range p.entries {
		if err := ctx.Err(); err != nil {
			return Result{Records: records, Matched: len(records) > 0}, err
		}

		m := e.expr.Match(line)
		if !m.Found {
			continue
		}

		rec := Record{ID: e.id, Start: m.Start, End: m.End}
		// If no captures, leave Fields as nil (not empty map)
		if fields := m.Fields(); len(fields) > 0 {
			rec.Fields = fields
		}
		records = append(records, rec)

		if p.mode == ModeFirst {
			break
		}
	}

	return Result{Records: records, Matched: len(records) > 0}, nil
}
