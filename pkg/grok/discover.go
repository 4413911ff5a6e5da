package grok

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// tokenPattern splits a sample into whitespace-separated tokens.
var tokenPattern = regexp.MustCompile(`\S+`)

// Discoverer guesses an expression for a sample line from the patterns in a
// registry. It is safe for concurrent use as long as the registry is not
// mutated concurrently.
type Discoverer struct {
	registry *Registry
	cache    *Cache
	log      *slog.Logger

	mu         sync.Mutex
	ranked     []candidate
	rankedAt   uint64
	rankedOnce bool
}

// candidate is a registry name with its whole-token expression.
type candidate struct {
	name       string
	expr       *Expression
	complexity int
}

// NewDiscoverer returns a Discoverer over reg. Inline definitions found in
// registered fragments are written to reg while candidates are compiled.
func NewDiscoverer(reg *Registry, opts ...Option) (*Discoverer, error) {
	c, err := NewCompiler(reg, opts...)
	if err != nil {
		return nil, err
	}
	return &Discoverer{
		registry: c.registry,
		cache:    NewCache(c, 0),
		log:      c.log,
	}, nil
}

// Discover returns an expression that matches text. Each whitespace-separated
// token is replaced by a reference to the most specific registered pattern
// that matches the whole token; tokens no pattern matches are kept as quoted
// literals. Runs of whitespace become \s+.
func (d *Discoverer) Discover(text string) string {
	tokens := tokenPattern.FindAllString(text, -1)
	if len(tokens) == 0 {
		return ""
	}

	candidates := d.candidates()
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, d.discoverToken(tok, candidates))
	}
	return strings.Join(parts, `\s+`)
}

func (d *Discoverer) discoverToken(tok string, candidates []candidate) string {
	for _, c := range candidates {
		if c.expr.MatchString(tok) {
			return "%{" + c.name + "}"
		}
	}
	return regexp.QuoteMeta(tok)
}

// candidates returns the registry's names ordered most specific first,
// recomputing the order only when the registry changed.
func (d *Discoverer) candidates() []candidate {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rankedOnce && d.rankedAt == d.registry.Version() {
		return d.ranked
	}

	names := d.registry.Names()
	ranked := make([]candidate, 0, len(names))
	for _, name := range names {
		expr, err := d.cache.Compile(fmt.Sprintf("^%%{%s}$", name))
		if err != nil {
			d.log.Debug("discovery skipped pattern", "name", name, "error", err)
			continue
		}
		ranked = append(ranked, candidate{
			name:       name,
			expr:       expr,
			complexity: len(expr.Flattened()),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].complexity > ranked[j].complexity
	})

	d.ranked = ranked
	d.rankedAt = d.registry.Version()
	d.rankedOnce = true
	return ranked
}
