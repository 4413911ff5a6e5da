package engine

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Regexp2 compiles expressions with regexp2, a backtracking engine with
// .NET/Perl syntax. It accepts lookaround and backreferences, which many
// published grok pattern sets rely on.
//
// Unlike the stdlib and coregex engines, classes such as \w, \d and \b are
// Unicode-aware by default: %{WORD} on "héllo" captures "héllo" where the
// other engines capture "h". Set Options to regexp2.ECMAScript for ASCII
// classes.
//
// MatchTimeout bounds a single search; zero means no limit. A search that
// times out is reported as no match.
type Regexp2 struct {
	Options      regexp2.RegexOptions
	MatchTimeout time.Duration
}

// Name implements Engine.
func (Regexp2) Name() string { return "regexp2" }

// Compile implements Engine.
func (e Regexp2) Compile(expr string) (Program, error) {
	re, err := regexp2.Compile(expr, e.Options)
	if err != nil {
		return nil, err
	}
	if e.MatchTimeout > 0 {
		re.MatchTimeout = e.MatchTimeout
	}

	// regexp2 numbers unnamed groups before named ones and reports unnamed
	// groups by their number, so positions are resolved by name.
	raw := re.GetGroupNames()
	numbers := re.GetGroupNumbers()
	names := make([]string, len(raw))
	pos := make(map[string]int, len(raw))
	for i, name := range raw {
		pos[name] = i
		if i < len(numbers) && name == strconv.Itoa(numbers[i]) {
			continue
		}
		names[i] = name
	}
	if len(names) > 0 {
		names[0] = ""
	}

	return &regexp2Program{re: re, names: names, pos: pos}, nil
}

type regexp2Program struct {
	re    *regexp2.Regexp
	names []string
	pos   map[string]int
}

func (p *regexp2Program) String() string { return p.re.String() }

func (p *regexp2Program) NumSubexp() int {
	if len(p.names) == 0 {
		return 0
	}
	return len(p.names) - 1
}

func (p *regexp2Program) SubexpNames() []string {
	return p.names
}

func (p *regexp2Program) FindStringSubmatchIndex(s string) []int {
	m, err := p.re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil
	}

	offsets := runeOffsets(s)
	loc := make([]int, 2*max(len(p.names), 1))
	for i := range loc {
		loc[i] = -1
	}

	for _, g := range m.Groups() {
		i, ok := p.pos[g.Name]
		if !ok || 2*i+1 >= len(loc) || len(g.Captures) == 0 {
			continue
		}
		loc[2*i] = offsets.byteOffset(g.Index)
		loc[2*i+1] = offsets.byteOffset(g.Index + g.Length)
	}
	loc[0] = offsets.byteOffset(m.Index)
	loc[1] = offsets.byteOffset(m.Index + m.Length)
	return loc
}

// runeTable maps rune positions (as reported by regexp2) to byte offsets.
// A nil table means the subject is ASCII and the positions are identical.
type runeTable []int

func runeOffsets(s string) runeTable {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return nil
	}

	// Ranging over a string yields one position per rune, invalid bytes
	// included, which is how regexp2 converts its input.
	table := make([]int, 0, len(s)+1)
	for i := range s {
		table = append(table, i)
	}
	return append(table, len(s))
}

func (t runeTable) byteOffset(r int) int {
	if t == nil {
		return r
	}
	if r < 0 {
		return -1
	}
	if r >= len(t) {
		return t[len(t)-1]
	}
	return t[r]
}

var _ Engine = Regexp2{}
