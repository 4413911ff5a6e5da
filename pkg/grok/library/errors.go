package library

import "fmt"

// ValidationError represents a schema-level validation error, such as an
// unsupported version or a library with no entries.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// DefinitionError represents an error in a single pattern or expression
// entry: a missing field, a duplicate name, or a compile failure.
type DefinitionError struct {
	Section string // "patterns" or "expressions"
	Index   int    // 0-based index within Section
	Name    string // Pattern name or expression ID (may be empty if missing)
	Field   string
	Message string
	Cause   error // Underlying error (e.g., compile error)
}

func (e *DefinitionError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q: %s: %s", e.Section, e.Name, e.Field, e.Message)
	}
	return fmt.Sprintf("%s[%d]: %s: %s", e.Section, e.Index, e.Field, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}
