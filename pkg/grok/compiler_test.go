package grok_test

import (
	"errors"
	"regexp/syntax"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grokkit/grokkit/pkg/grok"
	"github.com/grokkit/grokkit/pkg/grok/engine"
)

func newCompiler(t *testing.T, patterns map[string]string, opts ...grok.Option) *grok.Compiler {
	t.Helper()
	reg := grok.NewRegistry()
	if len(patterns) > 0 {
		require.NoError(t, reg.Merge(patterns))
	}
	c, err := grok.NewCompiler(reg, opts...)
	require.NoError(t, err)
	return c
}

func TestCompile_SingleReference(t *testing.T) {
	c := newCompiler(t, map[string]string{"WORD": `\w+`})

	expr, err := c.Compile("%{WORD}")
	require.NoError(t, err)
	assert.Equal(t, `(?<name0>\w+)`, expr.Flattened())
	assert.Equal(t, "%{WORD}", expr.Original())

	m := expr.Match("hello world")
	require.True(t, m.Found)
	assert.Equal(t, 0, m.Start)
	assert.Equal(t, 5, m.End)
	word, ok := m.Get("WORD")
	assert.True(t, ok)
	assert.Equal(t, "hello", word)
}

func TestCompile_Subnames(t *testing.T) {
	c := newCompiler(t, map[string]string{"WORD": `\w+`})

	expr, err := c.Compile("%{WORD:first} %{WORD:second}")
	require.NoError(t, err)
	assert.Equal(t, grok.CaptureTable{"first", "second"}, expr.Captures())

	m := expr.Match("foo bar")
	require.True(t, m.Found)
	first, _ := m.Get("first")
	second, _ := m.Get("second")
	assert.Equal(t, "foo", first)
	assert.Equal(t, "bar", second)
}

func TestCompile_InlineDefinition(t *testing.T) {
	c := newCompiler(t, nil)

	expr, err := c.Compile(`%{YEAR=\d{4}}`)
	require.NoError(t, err)
	assert.Equal(t, `(?<name0>\d{4})`, expr.Flattened())

	// The field name is the plain identifier, not the definition text.
	name, ok := expr.FieldName(0)
	require.True(t, ok)
	assert.Equal(t, "YEAR", name)

	fragment, ok := c.Registry().Get("YEAR")
	require.True(t, ok)
	assert.Equal(t, `\d{4}`, fragment)

	// Usable by later compilations.
	later, err := c.Compile("born %{YEAR:born}")
	require.NoError(t, err)
	born, _ := later.Match("born 1984").Get("born")
	assert.Equal(t, "1984", born)
}

func TestCompile_FailedInlineDefinitionIsSwallowed(t *testing.T) {
	c := newCompiler(t, map[string]string{"WORD": `\w+`})

	expr, err := c.Compile("%{WORD:w=   } end")
	require.NoError(t, err)
	assert.Equal(t, `(?<name0>\w+) end`, expr.Flattened())
	assert.Equal(t, grok.CaptureTable{"w"}, expr.Captures())

	warnings := expr.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "%{WORD:w=   }")
	assert.Contains(t, warnings[0], grok.ErrInvalidPattern.Error())

	frag, ok := c.Registry().Get("WORD")
	require.True(t, ok)
	assert.Equal(t, `\w+`, frag)

	m := expr.Match("hello end")
	require.True(t, m.Found)
	w, _ := m.Get("w")
	assert.Equal(t, "hello", w)
}

func TestCompile_FailedInlineDefinitionOfUnknownName(t *testing.T) {
	c := newCompiler(t, nil)

	_, err := c.Compile("%{Q= }")
	require.Error(t, err)
	assert.True(t, errors.Is(err, grok.ErrUnknownPattern))

	var unknown *grok.UnknownPatternError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Q", unknown.Name)
	_, ok := c.Registry().Get("Q")
	assert.False(t, ok)
}

func TestCompile_InlineDefinitionWithSubname(t *testing.T) {
	c := newCompiler(t, nil)

	expr, err := c.Compile(`%{NUM:count=\d+} items`)
	require.NoError(t, err)
	assert.Equal(t, `(?<name0>\d+) items`, expr.Flattened())

	count, _ := expr.Match("42 items").Get("count")
	assert.Equal(t, "42", count)
}

func TestCompile_InlineDefinitionWithNestedReference(t *testing.T) {
	c := newCompiler(t, map[string]string{"INT": `\d+`})

	expr, err := c.Compile(`%{RANGE=%{INT:lo}-%{INT:hi}}`)
	require.NoError(t, err)

	m := expr.Match("port 10-20")
	require.True(t, m.Found)
	assert.Equal(t, map[string]string{"RANGE": "10-20", "lo": "10", "hi": "20"}, m.Fields())
}

func TestCompile_SelfReferenceHitsLimit(t *testing.T) {
	c := newCompiler(t, map[string]string{"A": "%{A}"})

	_, err := c.Compile("%{A}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, grok.ErrRecursionLimit))

	var limitErr *grok.RecursionLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, "%{A}", limitErr.Expression)
	assert.Equal(t, grok.DefaultMaxExpansions, limitErr.Limit)
	assert.Contains(t, err.Error(), "%{A}")
}

func TestCompile_MutualRecursionHitsLimit(t *testing.T) {
	c := newCompiler(t, map[string]string{"A": "x%{B}", "B": "y%{A}"})

	_, err := c.Compile("%{A}")
	assert.True(t, errors.Is(err, grok.ErrRecursionLimit))
}

func TestCompile_MaxExpansionsBoundary(t *testing.T) {
	c := newCompiler(t, map[string]string{"D": `\d`}, grok.WithMaxExpansions(3))

	_, err := c.Compile("%{D}%{D}%{D}")
	require.NoError(t, err)

	_, err = c.Compile("%{D}%{D}%{D}%{D}")
	assert.True(t, errors.Is(err, grok.ErrRecursionLimit))
}

func TestCompile_RepeatedReferenceGetsDistinctSlots(t *testing.T) {
	c := newCompiler(t, map[string]string{"WORD": `\w+`})

	expr, err := c.Compile("%{WORD} %{WORD}")
	require.NoError(t, err)
	assert.Equal(t, `(?<name0>\w+) (?<name1>\w+)`, expr.Flattened())
	assert.Equal(t, grok.CaptureTable{"WORD", "WORD"}, expr.Captures())

	m := expr.Match("foo bar")
	require.True(t, m.Found)
	s0, ok0 := m.Slot(0)
	s1, ok1 := m.Slot(1)
	assert.True(t, ok0)
	assert.True(t, ok1)
	assert.Equal(t, "foo", s0)
	assert.Equal(t, "bar", s1)
	assert.Equal(t, []string{"foo", "bar"}, m.Values("WORD"))
	assert.Equal(t, map[string][]string{"WORD": {"foo", "bar"}}, m.Captures())
}

func TestCompile_NestedFragments(t *testing.T) {
	c := newCompiler(t, map[string]string{
		"INT":  `\d+`,
		"PAIR": `%{INT:left}/%{INT:right}`,
	})

	expr, err := c.Compile("ratio %{PAIR:ratio}")
	require.NoError(t, err)
	assert.Equal(t, `ratio (?<name0>(?<name1>\d+)/(?<name2>\d+))`, expr.Flattened())
	assert.Equal(t, grok.CaptureTable{"ratio", "left", "right"}, expr.Captures())

	m := expr.Match("ratio 3/4")
	assert.Equal(t, map[string]string{"ratio": "3/4", "left": "3", "right": "4"}, m.Fields())
}

func TestCompile_NoReferences(t *testing.T) {
	c := newCompiler(t, nil)

	expr, err := c.Compile(`\d+`)
	require.NoError(t, err)
	assert.Equal(t, `\d+`, expr.Flattened())
	assert.Empty(t, expr.Captures())

	m := expr.Match("abc123def")
	require.True(t, m.Found)
	assert.Equal(t, 3, m.Start)
	assert.Equal(t, "123", m.Text())
}

func TestCompile_Blank(t *testing.T) {
	c := newCompiler(t, nil)

	for _, expr := range []string{"", "   ", "\t\n"} {
		_, err := c.Compile(expr)
		assert.True(t, errors.Is(err, grok.ErrEmptyPattern), "%q", expr)
	}
}

func TestCompile_UnknownPattern(t *testing.T) {
	c := newCompiler(t, map[string]string{"WORD": `\w+`})

	_, err := c.Compile("%{WORD} %{MISSING:x}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, grok.ErrUnknownPattern))

	var unknown *grok.UnknownPatternError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "MISSING", unknown.Name)
	assert.Equal(t, "%{MISSING:x}", unknown.Reference)
}

func TestCompile_EngineErrorUnmodified(t *testing.T) {
	c := newCompiler(t, map[string]string{"BAD": `[unclosed`})

	_, err := c.Compile("%{BAD}")
	require.Error(t, err)
	var synErr *syntax.Error
	assert.True(t, errors.As(err, &synErr))
	assert.False(t, errors.Is(err, grok.ErrInvalidPattern))
}

func TestCompile_IncompleteReferenceLeftLiteral(t *testing.T) {
	c := newCompiler(t, map[string]string{"WORD": `\w+`})

	// "%{" without a closing brace is not a reference.
	expr, err := c.Compile(`100%\{ %{WORD}`)
	require.NoError(t, err)
	assert.Equal(t, `100%\{ (?<name0>\w+)`, expr.Flattened())
}

func TestCompile_UnderscoreNames(t *testing.T) {
	c := newCompiler(t, map[string]string{"LOG_LEVEL": `[A-Z]+`})

	expr, err := c.Compile("%{LOG_LEVEL:level}")
	require.NoError(t, err)
	level, _ := expr.Match("WARN").Get("level")
	assert.Equal(t, "WARN", level)
}

func TestCompile_SubnameWithColon(t *testing.T) {
	c := newCompiler(t, map[string]string{"INT": `\d+`})

	expr, err := c.Compile("%{INT:http:status}")
	require.NoError(t, err)
	name, _ := expr.FieldName(0)
	assert.Equal(t, "http:status", name)
}

func TestCompile_ExpressionsAreIndependent(t *testing.T) {
	c := newCompiler(t, map[string]string{"WORD": `\w+`, "INT": `\d+`})

	first, err := c.Compile("%{WORD}")
	require.NoError(t, err)
	second, err := c.Compile("%{INT}")
	require.NoError(t, err)

	assert.Equal(t, `(?<name0>\w+)`, first.Flattened())
	assert.Equal(t, `(?<name0>\d+)`, second.Flattened())
	assert.Equal(t, "abc", first.Match("abc 12").Text())
	assert.Equal(t, "12", second.Match("abc 12").Text())
}

func TestCompile_Engines(t *testing.T) {
	for _, e := range []engine.Engine{engine.Stdlib{}, engine.Regexp2{}, engine.Coregex{}} {
		t.Run(e.Name(), func(t *testing.T) {
			c := newCompiler(t, map[string]string{"WORD": `\w+`}, grok.WithEngine(e))

			expr, err := c.Compile("%{WORD:first} %{WORD:second}")
			require.NoError(t, err)

			m := expr.Match("-- foo bar --")
			require.True(t, m.Found)
			assert.Equal(t, 3, m.Start)
			assert.Equal(t, 10, m.End)
			assert.Equal(t, map[string]string{"first": "foo", "second": "bar"}, m.Fields())
		})
	}
}

func TestNewCompiler_InvalidOptions(t *testing.T) {
	_, err := grok.NewCompiler(nil, grok.WithMaxExpansions(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max expansions")

	_, err = grok.NewCompiler(nil, grok.WithEngine(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine")
}

func TestNewCompiler_NilRegistry(t *testing.T) {
	c, err := grok.NewCompiler(nil)
	require.NoError(t, err)
	require.NotNil(t, c.Registry())
	assert.Equal(t, 0, c.Registry().Len())
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "name0", grok.GroupName(0))
	assert.Equal(t, "name12", grok.GroupName(12))
}

func TestCompile_LongChain(t *testing.T) {
	// P0 -> P1 -> ... -> P49 -> literal
	patterns := make(map[string]string)
	for i := 0; i < 50; i++ {
		patterns[name(i)] = "%{" + name(i+1) + "}"
	}
	patterns[name(50)] = "x"
	c := newCompiler(t, patterns)

	expr, err := c.Compile("%{" + name(0) + "}")
	require.NoError(t, err)
	assert.Len(t, expr.Captures(), 51)
	assert.True(t, strings.HasSuffix(expr.Flattened(), "x"+strings.Repeat(")", 51)))
}

func name(i int) string {
	return "P" + strings.Repeat("I", i)
}
