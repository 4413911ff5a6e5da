package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/grokkit/grokkit/internal/patternfinder"
	"github.com/grokkit/grokkit/pkg/grok"
	"github.com/grokkit/grokkit/pkg/grok/engine"
	"github.com/grokkit/grokkit/pkg/grok/patterns"
)

// loadConfig holds the global flags that decide which patterns are loaded
// and how expressions are compiled.
type loadConfig struct {
	PatternFiles  []string
	PatternsDir   string
	NoBase        bool
	EngineName    string
	MaxExpansions int
}

func currentLoadConfig() loadConfig {
	return loadConfig{
		PatternFiles:  patternFiles,
		PatternsDir:   patternsDir,
		NoBase:        noBase,
		EngineName:    engineName,
		MaxExpansions: maxExpansions,
	}
}

// environment is everything a subcommand needs to compile expressions.
type environment struct {
	Registry *grok.Registry

	// Libraries are the YAML library files found in the patterns directory.
	Libraries []string

	// Options configure every compiler the subcommand creates.
	Options []grok.Option
}

// loadEnvironment builds the registry from the base patterns, the patterns
// directory and explicit pattern files, in that order, so later sources
// override earlier ones.
func loadEnvironment(ctx context.Context, cfg loadConfig, logger *slog.Logger) (*environment, error) {
	eng, err := engine.ByName(cfg.EngineName)
	if err != nil {
		return nil, err
	}
	opts := []grok.Option{
		grok.WithEngine(eng),
		grok.WithMaxExpansions(cfg.MaxExpansions),
		grok.WithLogger(logger),
	}

	reg := grok.NewRegistry()
	if !cfg.NoBase {
		if err := patterns.LoadInto(reg); err != nil {
			return nil, fmt.Errorf("loading base patterns: %w", err)
		}
	}

	dirFiles, libraries, err := scanPatternsDir(cfg.PatternsDir, logger)
	if err != nil {
		return nil, err
	}

	files := append(dirFiles, cfg.PatternFiles...)
	if len(files) > 0 {
		loaded, err := grok.LoadFiles(ctx, files...)
		if err != nil {
			return nil, err
		}
		if loaded.Len() > 0 {
			if err := reg.MergeRegistry(loaded); err != nil {
				return nil, err
			}
		}
		logger.Debug("loaded pattern files", "count", len(files), "patterns", loaded.Len())
	}

	return &environment{Registry: reg, Libraries: libraries, Options: opts}, nil
}

// scanPatternsDir returns the pattern and library files of the patterns
// directory. A missing directory is only an error when it was asked for.
func scanPatternsDir(explicit string, logger *slog.Logger) (patternFiles, libraryFiles []string, err error) {
	dir, err := patternfinder.FindPatternsDir(explicit)
	if err != nil {
		if explicit == "" && errors.Is(err, patternfinder.ErrPatternsDirNotFound) && !envDirSet() {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	logger.Debug("using patterns directory", "path", dir)

	patternFiles, err = patternfinder.FindPatternFiles(dir)
	if err != nil && !errors.Is(err, patternfinder.ErrNoPatternFiles) {
		return nil, nil, err
	}
	libraryFiles, err = patternfinder.FindLibraryFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	return patternFiles, libraryFiles, nil
}

func envDirSet() bool {
	return os.Getenv(patternfinder.EnvPatternsDir) != ""
}
