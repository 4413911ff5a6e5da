package main

import (
	"errors"
	"fmt"

	"github.com/grokkit/grokkit/pkg/grok/library"
)

// exprID is the record ID of the expression given on the command line.
const exprID = "expr"

// buildParser builds a library Parser from the command-line expression and
// the library files. Either may be empty but not both. With first set, each
// line yields at most one record.
func buildParser(env *environment, expr string, libraryFiles []string, first bool) (*library.Parser, error) {
	var libs []*library.Library

	for i, path := range libraryFiles {
		lib, err := library.Load(path)
		if err != nil {
			// Error from library package is already sanitized (no path)
			return nil, fmt.Errorf("library file %d: %w", i+1, err)
		}
		libs = append(libs, lib)
	}

	if expr != "" {
		libs = append(libs, &library.Library{
			Version:     library.SupportedVersion,
			Expressions: []library.Entry{{ID: exprID, Expression: expr}},
		})
	}

	if len(libs) == 0 {
		return nil, errors.New("no expression given")
	}

	merged, err := library.Merge(libs...)
	if err != nil {
		return nil, err
	}

	mode := library.ModeAll
	if first {
		mode = library.ModeFirst
	}

	return library.NewParser(merged,
		library.WithRegistry(env.Registry),
		library.WithMode(mode),
		library.WithCompilerOptions(env.Options...),
	)
}
