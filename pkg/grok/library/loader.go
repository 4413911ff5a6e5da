package library

import (
	"errors"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/grokkit/grokkit/internal/safefile"
	"github.com/grokkit/grokkit/pkg/grok"
)

const (
	// MaxLibraryFileSize is the maximum allowed size for a library file (1MB).
	MaxLibraryFileSize = 1 * 1024 * 1024

	// MaxExpressionLength is the maximum length of a single pattern or
	// expression before expansion.
	MaxExpressionLength = 4096

	// MaxEntryCount is the maximum number of patterns plus expressions in a
	// library.
	MaxEntryCount = 1000

	// SupportedVersion is the currently supported library format version.
	SupportedVersion = 1
)

// validName matches names that a %{NAME} reference can resolve.
var validName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Load reads and parses a library file from the given path.
// Only regular files are accepted, and error messages do not contain the path.
//
// Example:
//
//	lib, err := library.Load("nginx.yaml")
//	if err != nil {
//	    log.Fatalf("failed to load library: %v", err)
//	}
func Load(path string) (*Library, error) {
	data, err := safefile.ReadFile(path, MaxLibraryFileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a library from a byte slice.
// Returns an error if the data cannot be parsed or fails validation.
func LoadBytes(data []byte) (*Library, error) {
	if len(data) == 0 {
		return nil, errors.New("library file is empty")
	}
	if len(data) > MaxLibraryFileSize {
		return nil, fmt.Errorf("library file too large: %d bytes (max %d)", len(data), MaxLibraryFileSize)
	}

	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := lib.Validate(); err != nil {
		return nil, err
	}

	return &lib, nil
}

// Validate performs schema-level validation on the library.
// It checks for:
//   - Supported version number
//   - At least one entry, and no more than MaxEntryCount
//   - Required fields and referenceable pattern names
//   - Unique pattern names and expression IDs
//   - Length limits
//
// Validate does not compile anything; NewParser does.
func (lib *Library) Validate() error {
	if lib.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", lib.Version, SupportedVersion),
		}
	}

	total := len(lib.Patterns) + len(lib.Expressions)
	if total == 0 {
		return &ValidationError{
			Field:   "expressions",
			Message: "at least one pattern or expression is required",
		}
	}
	if total > MaxEntryCount {
		return &ValidationError{
			Field:   "expressions",
			Message: fmt.Sprintf("too many entries (%d), maximum allowed is %d", total, MaxEntryCount),
		}
	}

	seenNames := make(map[string]int, len(lib.Patterns))
	for i, d := range lib.Patterns {
		if d.Name == "" {
			return &DefinitionError{Section: "patterns", Index: i, Field: "name", Message: "name is required"}
		}
		if !validName.MatchString(d.Name) {
			return &DefinitionError{
				Section: "patterns",
				Index:   i,
				Name:    d.Name,
				Field:   "name",
				Message: "name may only contain letters, digits and underscores",
			}
		}
		if d.Pattern == "" {
			return &DefinitionError{Section: "patterns", Index: i, Name: d.Name, Field: "pattern", Message: "pattern is required"}
		}
		if prev, exists := seenNames[d.Name]; exists {
			return &DefinitionError{
				Section: "patterns",
				Index:   i,
				Name:    d.Name,
				Field:   "name",
				Message: fmt.Sprintf("duplicate name (previously defined at patterns[%d])", prev),
			}
		}
		seenNames[d.Name] = i

		if len(d.Pattern) > MaxExpressionLength {
			return &DefinitionError{
				Section: "patterns",
				Index:   i,
				Name:    d.Name,
				Field:   "pattern",
				Message: fmt.Sprintf("pattern too long: %d bytes (max %d)", len(d.Pattern), MaxExpressionLength),
			}
		}
	}

	seenIDs := make(map[string]int, len(lib.Expressions))
	for i, e := range lib.Expressions {
		if e.ID == "" {
			return &DefinitionError{Section: "expressions", Index: i, Field: "id", Message: "id is required"}
		}
		if e.Expression == "" {
			return &DefinitionError{Section: "expressions", Index: i, Name: e.ID, Field: "expression", Message: "expression is required"}
		}
		if prev, exists := seenIDs[e.ID]; exists {
			return &DefinitionError{
				Section: "expressions",
				Index:   i,
				Name:    e.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id (previously defined at expressions[%d])", prev),
			}
		}
		seenIDs[e.ID] = i

		if len(e.Expression) > MaxExpressionLength {
			return &DefinitionError{
				Section: "expressions",
				Index:   i,
				Name:    e.ID,
				Field:   "expression",
				Message: fmt.Sprintf("expression too long: %d bytes (max %d)", len(e.Expression), MaxExpressionLength),
			}
		}
	}

	return nil
}

// LoadInto registers the library's pattern definitions in reg.
// Nothing is registered if the library has no patterns.
func (lib *Library) LoadInto(reg *grok.Registry) error {
	if len(lib.Patterns) == 0 {
		return nil
	}
	defs := make(map[string]string, len(lib.Patterns))
	for _, d := range lib.Patterns {
		defs[d.Name] = d.Pattern
	}
	return reg.Merge(defs)
}

// Merge concatenates libraries in order and validates the result, so pattern
// names and expression IDs must be unique across all of them.
func Merge(libs ...*Library) (*Library, error) {
	out := &Library{Version: SupportedVersion}
	for _, lib := range libs {
		if lib == nil {
			continue
		}
		out.Patterns = append(out.Patterns, lib.Patterns...)
		out.Expressions = append(out.Expressions, lib.Expressions...)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
