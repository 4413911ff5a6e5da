package grok

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// definitionLine matches one "NAME FRAGMENT" line of a pattern file.
var definitionLine = regexp.MustCompile(`^([A-Za-z0-9_]+)\s+(.+)$`)

// maxLineSize bounds a single line of a pattern file.
const maxLineSize = 64 * 1024

// Registry maps pattern names to fragments.
//
// A Registry is not safe for concurrent mutation. Compiling an expression that
// carries inline definitions mutates the registry it was compiled against.
type Registry struct {
	patterns map[string]string
	version  uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{patterns: make(map[string]string)}
}

// Add registers fragment under name, replacing any previous definition.
// Returns ErrInvalidPattern if either argument is blank.
func (r *Registry) Add(name, fragment string) error {
	if err := checkDefinition(name, fragment); err != nil {
		return err
	}
	r.patterns[name] = fragment
	r.version++
	return nil
}

// Merge copies every entry of patterns into the registry, overwriting
// duplicates. Returns ErrInvalidPattern if patterns is nil or empty or any
// entry is blank; the registry is left unchanged in that case.
func (r *Registry) Merge(patterns map[string]string) error {
	if len(patterns) == 0 {
		return fmt.Errorf("%w: no patterns to merge", ErrInvalidPattern)
	}
	for name, fragment := range patterns {
		if err := checkDefinition(name, fragment); err != nil {
			return err
		}
	}
	maps.Copy(r.patterns, patterns)
	r.version++
	return nil
}

// MergeRegistry is Merge with another registry as the source.
func (r *Registry) MergeRegistry(other *Registry) error {
	if other == nil {
		return fmt.Errorf("%w: registry is nil", ErrInvalidPattern)
	}
	return r.Merge(other.patterns)
}

// Get returns the fragment registered under name.
func (r *Registry) Get(name string) (string, bool) {
	fragment, ok := r.patterns[name]
	return fragment, ok
}

// Patterns returns a copy of all definitions.
func (r *Registry) Patterns() map[string]string {
	return maps.Clone(r.patterns)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.patterns))
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.patterns)
}

// Version changes every time the registry is mutated.
func (r *Registry) Version() uint64 {
	return r.version
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	return &Registry{patterns: maps.Clone(r.patterns), version: r.version}
}

// Load reads "NAME FRAGMENT" definitions, one per line. Lines that do not
// have that shape (blank lines, comments) are skipped. Nothing is registered
// if reading fails.
func (r *Registry) Load(rd io.Reader) error {
	loaded, err := parseDefinitions(rd)
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		return nil
	}
	maps.Copy(r.patterns, loaded)
	r.version++
	return nil
}

func parseDefinitions(rd io.Reader) (map[string]string, error) {
	loaded := make(map[string]string)
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		// Trim trailing CR for Windows CRLF compatibility
		line := strings.TrimRight(scanner.Text(), "\r")
		m := definitionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if strings.TrimSpace(m[2]) == "" {
			continue
		}
		loaded[m[1]] = m[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read patterns: %w", err)
	}
	return loaded, nil
}

func checkDefinition(name, fragment string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be blank", ErrInvalidPattern)
	}
	if strings.TrimSpace(fragment) == "" {
		return fmt.Errorf("%w: fragment for %q must not be blank", ErrInvalidPattern, name)
	}
	return nil
}
