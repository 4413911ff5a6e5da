package library_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grokkit/grokkit/pkg/grok"
	"github.com/grokkit/grokkit/pkg/grok/engine"
	"github.com/grokkit/grokkit/pkg/grok/library"
	"github.com/grokkit/grokkit/pkg/grok/patterns"
)

func newParser(t *testing.T, lib *library.Library, opts ...library.Option) *library.Parser {
	t.Helper()
	p, err := library.NewParser(lib, opts...)
	require.NoError(t, err)
	return p
}

func TestNewParser_Valid(t *testing.T) {
	lib, err := library.Load("testdata/valid.yaml")
	require.NoError(t, err)

	p := newParser(t, lib, library.WithRegistry(patterns.Registry()))
	assert.Equal(t, 2, p.Len())

	expr, ok := p.Expression("request")
	require.True(t, ok)
	assert.Equal(t, "%{METHOD:method} %{NOTSPACE:path} took %{DURATION:duration}", expr.Original())

	_, ok = p.Expression("missing")
	assert.False(t, ok)
}

func TestNewParser_InvalidExpression(t *testing.T) {
	lib, err := library.Load("testdata/invalid_expression.yaml")
	require.NoError(t, err)

	_, err = library.NewParser(lib, library.WithRegistry(patterns.Registry()))
	require.Error(t, err)
	var defErr *library.DefinitionError
	require.True(t, errors.As(err, &defErr))
	assert.Equal(t, "broken", defErr.Name)
	assert.Contains(t, err.Error(), "invalid expression")
	assert.NotNil(t, errors.Unwrap(err))
}

func TestNewParser_UnknownPattern(t *testing.T) {
	// Without the base registry WORD is undefined.
	lib, err := library.Load("testdata/invalid_expression.yaml")
	require.NoError(t, err)

	_, err = library.NewParser(lib)
	assert.True(t, errors.Is(err, grok.ErrUnknownPattern))
}

func TestNewParser_Nil(t *testing.T) {
	_, err := library.NewParser(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestNewParser_InvalidMode(t *testing.T) {
	lib := &library.Library{Version: 1, Expressions: []library.Entry{{ID: "x", Expression: "x"}}}
	_, err := library.NewParser(lib, library.WithMode(library.Mode(7)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mode(7)")
}

func TestNewParser_InvalidCompilerOptions(t *testing.T) {
	lib := &library.Library{Version: 1, Expressions: []library.Entry{{ID: "x", Expression: "x"}}}
	_, err := library.NewParser(lib, library.WithCompilerOptions(grok.WithMaxExpansions(0)))
	assert.Error(t, err)
}

func TestNewParser_DoesNotModifyBaseRegistry(t *testing.T) {
	base := patterns.Registry()
	before := base.Len()

	lib := &library.Library{
		Version:     1,
		Patterns:    []library.Definition{{Name: "TICKET", Pattern: `[A-Z]+-\d+`}},
		Expressions: []library.Entry{{ID: "inline", Expression: `%{SHA=[0-9a-f]{7}}`}},
	}
	newParser(t, lib, library.WithRegistry(base))

	assert.Equal(t, before, base.Len())
	_, ok := base.Get("TICKET")
	assert.False(t, ok)
	_, ok = base.Get("SHA")
	assert.False(t, ok)
}

func TestNewParserFromFile(t *testing.T) {
	p, err := library.NewParserFromFile("testdata/valid.yaml", library.WithRegistry(patterns.Registry()))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	_, err = library.NewParserFromFile("testdata/nonexistent.yaml")
	assert.Error(t, err)
}

func TestParser_ParseLine_Match(t *testing.T) {
	p, err := library.NewParserFromFile("testdata/valid.yaml", library.WithRegistry(patterns.Registry()))
	require.NoError(t, err)

	line := "GET /api/users took 35ms"
	result, err := p.ParseLine(context.Background(), line)
	require.NoError(t, err)
	require.True(t, result.Matched)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "request", rec.ID)
	assert.Equal(t, 0, rec.Start)
	assert.Equal(t, len(line), rec.End)
	assert.Equal(t, map[string]string{
		"method":   "GET",
		"path":     "/api/users",
		"duration": "35ms",
		"ms":       "35",
	}, rec.Fields)
}

func TestParser_ParseLine_NoMatch(t *testing.T) {
	p, err := library.NewParserFromFile("testdata/valid.yaml", library.WithRegistry(patterns.Registry()))
	require.NoError(t, err)

	result, err := p.ParseLine(context.Background(), "nothing to see here")
	require.NoError(t, err)
	assert.False(t, result.Matched)
	assert.Empty(t, result.Records)
}

func TestParser_ParseLine_Modes(t *testing.T) {
	lib := &library.Library{
		Version: 1,
		Expressions: []library.Entry{
			{ID: "number", Expression: `%{INT:n}`},
			{ID: "word", Expression: `%{WORD:w}`},
			{ID: "never", Expression: `^zzz$`},
		},
	}
	line := "abc 42"

	t.Run("all", func(t *testing.T) {
		p := newParser(t, lib, library.WithRegistry(patterns.Registry()))
		result, err := p.ParseLine(context.Background(), line)
		require.NoError(t, err)
		require.Len(t, result.Records, 2)
		assert.Equal(t, "number", result.Records[0].ID)
		assert.Equal(t, "42", result.Records[0].Fields["n"])
		assert.Equal(t, "word", result.Records[1].ID)
		assert.Equal(t, "abc", result.Records[1].Fields["w"])
	})

	t.Run("first", func(t *testing.T) {
		p := newParser(t, lib, library.WithRegistry(patterns.Registry()), library.WithMode(library.ModeFirst))
		result, err := p.ParseLine(context.Background(), line)
		require.NoError(t, err)
		require.Len(t, result.Records, 1)
		assert.Equal(t, "number", result.Records[0].ID)
	})
}

func TestParser_ParseLine_NoCapturesLeavesFieldsNil(t *testing.T) {
	lib := &library.Library{Version: 1, Expressions: []library.Entry{{ID: "digits", Expression: `\d+`}}}
	p := newParser(t, lib)

	result, err := p.ParseLine(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Nil(t, result.Records[0].Fields)
	assert.Equal(t, 3, result.Records[0].Start)
	assert.Equal(t, 6, result.Records[0].End)
}

func TestParser_ParseLine_ContextCanceled(t *testing.T) {
	lib := &library.Library{Version: 1, Expressions: []library.Entry{{ID: "any", Expression: `.`}}}
	p := newParser(t, lib)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.ParseLine(ctx, "x")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, result.Matched)
}

func TestParser_WithEngine(t *testing.T) {
	lib := &library.Library{
		Version:     1,
		Patterns:    []library.Definition{{Name: "PRICE", Pattern: `\d+(?=EUR)`}},
		Expressions: []library.Entry{{ID: "price", Expression: `%{PRICE:amount}`}},
	}

	_, err := library.NewParser(lib)
	require.Error(t, err, "RE2 has no lookahead")

	p := newParser(t, lib, library.WithCompilerOptions(grok.WithEngine(engine.Regexp2{})))
	result, err := p.ParseLine(context.Background(), "total 30EUR")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "30", result.Records[0].Fields["amount"])
}

func TestParser_Concurrent(t *testing.T) {
	p, err := library.NewParserFromFile("testdata/valid.yaml", library.WithRegistry(patterns.Registry()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := p.ParseLine(context.Background(), "error: disk full")
			if assert.NoError(t, err) && assert.Len(t, result.Records, 1) {
				assert.Equal(t, "disk full", result.Records[0].Fields["reason"])
			}
		}()
	}
	wg.Wait()
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "all", library.ModeAll.String())
	assert.Equal(t, "first", library.ModeFirst.String())
	assert.Equal(t, "Mode(9)", library.Mode(9).String())
}
