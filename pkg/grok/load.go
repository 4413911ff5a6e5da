package grok

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/grokkit/grokkit/internal/safefile"
)

// MaxPatternFileSize is the maximum allowed size for a pattern file (1MB).
const MaxPatternFileSize = 1 * 1024 * 1024

// maxConcurrentLoads bounds LoadFiles' parallel reads.
const maxConcurrentLoads = 8

// LoadFile reads pattern definitions from the file at path.
// Only regular files are accepted. Error messages do not contain the path.
func (r *Registry) LoadFile(path string) error {
	data, err := safefile.ReadFile(path, MaxPatternFileSize)
	if err != nil {
		return fmt.Errorf("failed to read pattern file: %w", err)
	}
	return r.Load(bytes.NewReader(data))
}

// LoadFiles reads every file concurrently and merges them into a new
// Registry in argument order, so later files override earlier ones.
//
// Example:
//
//	reg, err := grok.LoadFiles(ctx, "patterns/base", "patterns/nginx")
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadFiles(ctx context.Context, paths ...string) (*Registry, error) {
	loaded := make([]*Registry, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			reg := NewRegistry()
			if err := reg.LoadFile(path); err != nil {
				// Error from LoadFile is already sanitized (no path)
				return fmt.Errorf("pattern file %d: %w", i+1, err)
			}
			loaded[i] = reg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := NewRegistry()
	for _, reg := range loaded {
		if reg.Len() == 0 {
			continue
		}
		if err := out.MergeRegistry(reg); err != nil {
			return nil, err
		}
	}
	return out, nil
}
