// Package library loads YAML pattern libraries: a set of fragment
// definitions plus named expressions built from them, and matches log lines
// against every expression of a library at once.
package library

// Library represents the structure of a YAML library file.
//
// Example YAML file:
//
//	version: 1
//	patterns:
//	  - name: DURATION
//	    pattern: '%{INT:ms}ms'
//	expressions:
//	  - id: request
//	    expression: '%{WORD:method} %{NOTSPACE:path} took %{DURATION}'
//	  - id: failure
//	    expression: 'error: %{GREEDYDATA:reason}'
type Library struct {
	// Version is the library format version. Currently only version 1 is supported.
	Version int `yaml:"version"`

	// Patterns are fragment definitions added to the registry before any
	// expression is compiled.
	Patterns []Definition `yaml:"patterns"`

	// Expressions are the named expressions matched against each line.
	Expressions []Entry `yaml:"expressions"`
}

// Definition is a single named fragment.
type Definition struct {
	// Name is the identifier used in references such as %{NAME}.
	Name string `yaml:"name"`

	// Pattern is the fragment; it may reference other fragments.
	Pattern string `yaml:"pattern"`
}

// Entry is a single named expression.
type Entry struct {
	// ID identifies the expression in match records. IDs must be unique
	// within a library.
	ID string `yaml:"id"`

	// Expression is the macro expression to compile.
	Expression string `yaml:"expression"`
}
