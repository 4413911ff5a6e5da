package grok

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/grokkit/grokkit/pkg/grok/engine"
)

// DefaultMaxExpansions is the default ceiling on macro substitutions per
// compilation.
const DefaultMaxExpansions = 1000

// Option configures a Compiler or Grok using the functional options pattern.
type Option func(*config)

// config holds compiler configuration.
type config struct {
	engine        engine.Engine
	maxExpansions int
	logger        *slog.Logger
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func defaultConfig() *config {
	return &config{
		engine:        engine.Default,
		maxExpansions: DefaultMaxExpansions,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *config) validate() error {
	if c.maxExpansions <= 0 {
		return fmt.Errorf("max expansions must be positive, got %d", c.maxExpansions)
	}
	if c.engine == nil {
		return fmt.Errorf("regex engine must not be nil")
	}
	return nil
}

func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return discardLogger
	}
	return c.logger
}

// WithEngine sets the regular-expression engine used to compile flattened
// expressions. Default: engine.Stdlib.
func WithEngine(e engine.Engine) Option {
	return func(c *config) {
		c.engine = e
	}
}

// WithMaxExpansions sets how many macro references a single compilation may
// substitute before failing with ErrRecursionLimit.
// Default: DefaultMaxExpansions.
func WithMaxExpansions(n int) Option {
	return func(c *config) {
		c.maxExpansions = n
	}
}

// WithLogger sets a logger for debug output.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
