package grok

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// referencePattern matches one macro reference:
//
//	%{NAME}  %{NAME:SUBNAME}  %{NAME=DEFINITION}  %{NAME:SUBNAME=DEFINITION}
//
// DEFINITION may contain single-level brace groups so that quantifiers such
// as \d{4} and nested references such as %{INT} survive intact.
var referencePattern = regexp.MustCompile(
	`%\{([A-Za-z0-9_]+)(?::([A-Za-z0-9_:]+))?(?:=((?:[^{}]|\{[^{}]*\})+))?\}`,
)

// Submatch indexes into referencePattern.
const (
	refName       = 1
	refSubname    = 2
	refDefinition = 3
)

// reference is a parsed occurrence of referencePattern.
type reference struct {
	text       string // exact matched text, including any =DEFINITION
	name       string
	subname    string
	definition string
	inline     bool
}

// field returns the capture name recorded for the reference.
func (r reference) field() string {
	if r.subname != "" {
		return r.subname
	}
	return r.name
}

func parseReference(s string, loc []int) reference {
	group := func(i int) (string, bool) {
		if loc[2*i] < 0 {
			return "", false
		}
		return s[loc[2*i]:loc[2*i+1]], true
	}
	ref := reference{text: s[loc[0]:loc[1]]}
	ref.name, _ = group(refName)
	ref.subname, _ = group(refSubname)
	ref.definition, ref.inline = group(refDefinition)
	return ref
}

// GroupName returns the synthetic capture group name used for slot.
func GroupName(slot int) string {
	return "name" + strconv.Itoa(slot)
}

// Compiler flattens expressions against a Registry.
//
// A Compiler is not safe for concurrent use: inline definitions write to the
// registry. Wrap it in a Cache to share it between goroutines.
type Compiler struct {
	registry *Registry
	cfg      config
	log      *slog.Logger
}

// NewCompiler returns a Compiler that resolves references against reg.
// A nil reg is replaced by an empty Registry.
func NewCompiler(reg *Registry, opts ...Option) (*Compiler, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if reg == nil {
		reg = NewRegistry()
	}
	return &Compiler{
		registry: reg,
		cfg:      *cfg,
		log:      cfg.log(),
	}, nil
}

// Registry returns the registry the compiler resolves against.
func (c *Compiler) Registry() *Registry {
	return c.registry
}

// Compile expands every macro reference in root and compiles the result
// with the configured engine.
//
// References are resolved leftmost first. Each one is replaced by a capture
// group named GroupName(slot) wrapping the referenced fragment, and the slot
// is recorded in the capture table under SUBNAME, or NAME when there is no
// SUBNAME. Fragments may themselves contain references; expansion repeats
// until none remain or the expansion ceiling is reached.
//
// An inline definition (%{NAME=DEFINITION}) is added to the registry before
// the reference is resolved. A failure to add it is not fatal: it is logged
// and reported through Expression.Warnings.
//
// Errors:
//   - ErrEmptyPattern: root is blank
//   - *RecursionLimitError: more references than the ceiling allows
//   - *UnknownPatternError: a reference names an unregistered pattern
//   - ErrPatternNotFound: the expansion is empty
//   - any error from the engine, unmodified
func (c *Compiler) Compile(root string) (*Expression, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ErrEmptyPattern
	}

	expanded := root
	var captures CaptureTable
	var warnings []string
	budget := c.cfg.maxExpansions

	for {
		loc := referencePattern.FindStringSubmatchIndex(expanded)
		if loc == nil {
			break
		}
		if budget <= 0 {
			return nil, &RecursionLimitError{Expression: root, Limit: c.cfg.maxExpansions}
		}
		budget--

		ref := parseReference(expanded, loc)
		if ref.inline {
			if err := c.registry.Add(ref.name, ref.definition); err != nil {
				c.log.Debug("inline definition ignored", "reference", ref.text, "error", err)
				warnings = append(warnings, fmt.Sprintf("%s: %v", ref.text, err))
			}
		}

		fragment, ok := c.registry.Get(ref.name)
		if !ok {
			return nil, &UnknownPatternError{Name: ref.name, Reference: ref.text, Expression: root}
		}

		slot := len(captures)
		captures = append(captures, ref.field())

		// The leftmost match is also the first occurrence of its text.
		var b strings.Builder
		b.Grow(len(expanded) - len(ref.text) + len(fragment) + 16)
		b.WriteString(expanded[:loc[0]])
		b.WriteString("(?<")
		b.WriteString(GroupName(slot))
		b.WriteString(">")
		b.WriteString(fragment)
		b.WriteString(")")
		b.WriteString(expanded[loc[1]:])
		expanded = b.String()
	}

	if expanded == "" {
		return nil, ErrPatternNotFound
	}

	program, err := c.cfg.engine.Compile(expanded)
	if err != nil {
		return nil, err
	}

	c.log.Debug("compiled expression",
		"expression", root,
		"slots", len(captures),
		"engine", c.cfg.engine.Name(),
		"expansions", c.cfg.maxExpansions-budget)

	return newExpression(root, expanded, captures, program, warnings), nil
}
