package engine

import "regexp"

// Stdlib compiles expressions with the standard library's RE2 engine.
// Matching runs in linear time; lookaround and backreferences are rejected
// at compile time.
type Stdlib struct{}

// Name implements Engine.
func (Stdlib) Name() string { return "stdlib" }

// Compile implements Engine.
func (Stdlib) Compile(expr string) (Program, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return re, nil
}

var _ Engine = Stdlib{}
