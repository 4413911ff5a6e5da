// Package grok compiles named, composable text patterns into a single
// regular expression and extracts named fields from matches.
//
// This package allows you to:
//   - Register reusable pattern fragments by name in a [Registry]
//   - Compose them into expressions with macro references such as %{IP:client}
//   - Match the compiled [Expression] against text and read fields by name
//   - Guess an expression for a sample line with a [Discoverer]
//
// # Macro References
//
// An expression may contain references of four shapes:
//
//	%{NAME}                     fragment NAME, captured as field NAME
//	%{NAME:field}               fragment NAME, captured as field "field"
//	%{NAME=DEFINITION}          register NAME as DEFINITION, then as %{NAME}
//	%{NAME:field=DEFINITION}    register NAME as DEFINITION, then as %{NAME:field}
//
// Fragments may reference other fragments. Compilation replaces references
// one at a time, leftmost first, until none remain; each replacement becomes a
// capture group with a synthetic name (name0, name1, ...) whose slot is
// recorded in the expression's [CaptureTable]. The same fragment may be
// referenced any number of times; every occurrence gets its own slot.
// Expansion stops with [ErrRecursionLimit] after [DefaultMaxExpansions]
// substitutions, which catches fragments defined in terms of themselves.
//
// # Basic Usage
//
//	reg := grok.NewRegistry()
//	_ = reg.Add("WORD", `\w+`)
//	_ = reg.Add("INT", `\d+`)
//
//	c, err := grok.NewCompiler(reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	expr, err := c.Compile("%{WORD:user} logged in %{INT:times} times")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m := expr.Match("alice logged in 3 times")
//	if m.Found {
//	    user, _ := m.Get("user")
//	    fmt.Println(user)
//	}
//
// The [Grok] type wraps the same pieces behind a single stateful handle that
// remembers the last compiled expression.
//
// # Pattern Files
//
// Registries load definitions from a line-oriented text format, one
// "NAME FRAGMENT" pair per line. Lines that do not have that shape, such as
// blank lines and # comments, are ignored:
//
//	# numbers
//	INT [+-]?[0-9]+
//	PAIR %{INT:left}/%{INT:right}
//
// The [patterns] subpackage bundles a base library of common definitions.
//
// # Engines
//
// Flattened expressions are compiled by an [engine.Engine]. The default is
// the standard library's RE2 engine; [engine.Regexp2] accepts lookaround and
// backreferences, and [engine.Coregex] trades compile time for faster search.
//
// # Concurrency
//
// [Registry], [Compiler] and [Grok] are single-writer. [Expression] and
// [Match] are immutable and safe to share. [Cache] makes compilation safe to
// request from many goroutines.
package grok
