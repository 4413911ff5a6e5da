package engine

import "github.com/coregx/coregex"

// Coregex compiles expressions with coregex, a DFA/prefilter engine that
// accepts the same syntax as the standard library.
type Coregex struct{}

// Name implements Engine.
func (Coregex) Name() string { return "coregex" }

// Compile implements Engine.
func (Coregex) Compile(expr string) (Program, error) {
	re, err := coregex.Compile(expr)
	if err != nil {
		return nil, err
	}
	return coregexProgram{re}, nil
}

// coregexProgram adapts NumSubexp: coregex counts the whole match as a group.
type coregexProgram struct {
	*coregex.Regex
}

func (p coregexProgram) NumSubexp() int {
	return len(p.SubexpNames()) - 1
}

var _ Engine = Coregex{}
