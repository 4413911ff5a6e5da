package grok

import (
	"slices"

	"github.com/grokkit/grokkit/pkg/grok/engine"
)

// CaptureTable maps capture slots to field names. Slots are dense, start at
// zero and follow the order in which references were resolved.
type CaptureTable []string

// FieldName returns the field name recorded for slot.
func (t CaptureTable) FieldName(slot int) (string, bool) {
	if slot < 0 || slot >= len(t) {
		return "", false
	}
	return t[slot], true
}

// Slots returns every slot recorded under field, in slot order.
func (t CaptureTable) Slots(field string) []int {
	var slots []int
	for slot, name := range t {
		if name == field {
			slots = append(slots, slot)
		}
	}
	return slots
}

// Expression is the immutable result of a compilation.
//
// An Expression is safe for concurrent use by multiple goroutines.
type Expression struct {
	original  string
	flattened string
	captures  CaptureTable
	program   engine.Program
	groups    []int // slot -> submatch group number, -1 if the engine lost it
	warnings  []string
}

func newExpression(original, flattened string, captures CaptureTable, program engine.Program, warnings []string) *Expression {
	index := make(map[string]int, len(captures))
	for i, name := range program.SubexpNames() {
		if name != "" {
			if _, dup := index[name]; !dup {
				index[name] = i
			}
		}
	}

	groups := make([]int, len(captures))
	for slot := range captures {
		g, ok := index[GroupName(slot)]
		if !ok {
			g = -1
		}
		groups[slot] = g
	}

	return &Expression{
		original:  original,
		flattened: flattened,
		captures:  captures,
		program:   program,
		groups:    groups,
		warnings:  warnings,
	}
}

// Original returns the root expression as given to Compile.
func (e *Expression) Original() string { return e.original }

// Flattened returns the fully expanded expression handed to the engine.
func (e *Expression) Flattened() string { return e.flattened }

// String returns the flattened expression.
func (e *Expression) String() string { return e.flattened }

// Captures returns a copy of the capture table.
func (e *Expression) Captures() CaptureTable { return slices.Clone(e.captures) }

// FieldName returns the field name recorded for slot.
func (e *Expression) FieldName(slot int) (string, bool) {
	return e.captures.FieldName(slot)
}

// Warnings returns non-fatal problems met during expansion, such as inline
// definitions that could not be registered.
func (e *Expression) Warnings() []string { return slices.Clone(e.warnings) }

// Match searches text for the leftmost match of the expression. The match is
// unanchored: it may start and end anywhere in text.
func (e *Expression) Match(text string) *Match {
	loc := e.program.FindStringSubmatchIndex(text)
	if loc == nil {
		return &Match{Subject: text, expr: e}
	}
	return &Match{
		Subject: text,
		Found:   true,
		Start:   loc[0],
		End:     loc[1],
		expr:    e,
		loc:     loc,
	}
}

// MatchString reports whether text contains a match.
func (e *Expression) MatchString(text string) bool {
	return e.program.FindStringSubmatchIndex(text) != nil
}
