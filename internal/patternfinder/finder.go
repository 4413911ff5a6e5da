// Package patternfinder locates pattern directories and the pattern and
// library files inside them.
package patternfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnvPatternsDir is the environment variable name for specifying the patterns directory.
const EnvPatternsDir = "GROK_PATTERNS_DIR"

// Sentinel errors.
var (
	ErrPatternsDirNotFound = errors.New("patterns directory not found")
	ErrNoPatternFiles      = errors.New("no pattern files found")
)

// DefaultPatternsDirs returns candidate pattern directories in priority order:
// the user's configuration directory first, then system-wide locations.
func DefaultPatternsDirs() []string {
	var dirs []string
	if configDir, err := os.UserConfigDir(); err == nil && configDir != "" {
		dirs = append(dirs, filepath.Join(configDir, "grok", "patterns"))
	}
	return append(dirs,
		filepath.Join(string(filepath.Separator), "usr", "local", "share", "grok", "patterns"),
		filepath.Join(string(filepath.Separator), "usr", "share", "grok", "patterns"),
	)
}

// FindPatternsDir returns the patterns directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. GROK_PATTERNS_DIR environment variable
//  3. Auto-detect from DefaultPatternsDirs()
//
// Returns ErrPatternsDirNotFound if no valid directory is found.
// The returned path has symlinks resolved for consistency.
func FindPatternsDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveAndValidateDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: specified directory is invalid or contains no pattern files", ErrPatternsDirNotFound)
	}

	if envDir := os.Getenv(EnvPatternsDir); envDir != "" {
		if resolved := resolveAndValidateDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s environment variable points to invalid directory", ErrPatternsDirNotFound, EnvPatternsDir)
	}

	for _, dir := range DefaultPatternsDirs() {
		if resolved := resolveAndValidateDir(dir); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrPatternsDirNotFound
}

// FindPatternFiles returns the pattern files in dir sorted by name, so
// definitions in later files override earlier ones deterministically.
//
// Pattern files are regular, non-hidden files with no extension or the
// .grok extension. Returns ErrNoPatternFiles if there are none.
func FindPatternFiles(dir string) ([]string, error) {
	files, err := listRegular(dir, isPatternFile)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoPatternFiles
	}
	return files, nil
}

// FindLibraryFiles returns the YAML library files (*.yaml, *.yml) in dir
// sorted by name. An empty result is not an error.
func FindLibraryFiles(dir string) ([]string, error) {
	return listRegular(dir, isLibraryFile)
}

// isPatternFile accepts "nginx" and "base.grok" but not "README.md".
func isPatternFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == "" || strings.EqualFold(ext, ".grok")
}

func isLibraryFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// listRegular lists non-hidden regular files in dir accepted by keep.
// Symlinks and other special files are skipped.
func listRegular(dir string, keep func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading patterns directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !e.Type().IsRegular() || !keep(name) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// resolveAndValidateDir resolves symlinks and validates the directory.
// Returns the resolved path if valid, empty string otherwise.
func resolveAndValidateDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		// Broken symlink chains are treated as invalid directories
		return ""
	}

	if files, err := FindPatternFiles(resolved); err != nil || len(files) == 0 {
		if libs, err := FindLibraryFiles(resolved); err != nil || len(libs) == 0 {
			return ""
		}
	}

	return resolved
}
