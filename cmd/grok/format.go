package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/grokkit/grokkit/pkg/grok"
	"github.com/grokkit/grokkit/pkg/grok/library"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

var (
	styleID    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleSpan  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleKey   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	styleValue = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// OutputRecord writes a match record in the specified format to the writer.
func OutputRecord(format string, rec library.Record, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(rec, out)
	case "pretty":
		return OutputPretty(rec, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes a record as JSON Lines format.
func OutputJSON(rec library.Record, out io.Writer) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a record in human-readable format.
func OutputPretty(rec library.Record, out io.Writer) error {
	head := fmt.Sprintf("%s %s",
		styleID.Render("["+rec.ID+"]"),
		styleSpan.Render(fmt.Sprintf("%d-%d", rec.Start, rec.End)))

	var err error
	if len(rec.Fields) > 0 {
		_, err = fmt.Fprintf(out, "%s %s\n", head, formatFields(rec.Fields))
	} else {
		_, err = fmt.Fprintln(out, head)
	}
	return err
}

// expansion is the JSON form of a compiled expression.
type expansion struct {
	Expression string   `json:"expression"`
	Flattened  string   `json:"flattened"`
	Captures   []string `json:"captures"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OutputExpansion writes a compiled expression: the flattened form followed
// by one line per capture slot.
func OutputExpansion(format string, expr *grok.Expression, out io.Writer) error {
	switch format {
	case "jsonl":
		captures := expr.Captures()
		if captures == nil {
			captures = grok.CaptureTable{}
		}
		data, err := json.Marshal(expansion{
			Expression: expr.Original(),
			Flattened:  expr.Flattened(),
			Captures:   captures,
			Warnings:   expr.Warnings(),
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "pretty":
		if _, err := fmt.Fprintln(out, expr.Flattened()); err != nil {
			return err
		}
		for slot, field := range expr.Captures() {
			if _, err := fmt.Fprintf(out, "  %s %s\n",
				styleSpan.Render(grok.GroupName(slot)), styleKey.Render(field)); err != nil {
				return err
			}
		}
		for _, w := range expr.Warnings() {
			if _, err := fmt.Fprintf(out, "warning: %s\n", w); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// formatFields formats a map as sorted key=value pairs.
// Values are quoted if they contain spaces, equals signs, quotes, or control characters.
func formatFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}

	// Sort keys for deterministic output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(fields))
	for _, k := range keys {
		parts = append(parts, styleKey.Render(quoteIfNeeded(k))+"="+styleValue.Render(quoteIfNeeded(fields[k])))
	}
	return strings.Join(parts, " ")
}

// quoteIfNeeded quotes a value if it contains special characters or control characters.
// Returns the value unchanged if no quoting is needed.
func quoteIfNeeded(v string) string {
	if v == "" {
		return `""`
	}

	needsQuote := false
	for _, c := range v {
		if c == ' ' || c == '=' || c == '"' || c == '\\' || c < 0x20 || c == 0x7F {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c == 0x7F:
			// Other control characters (including DEL): escape as \xNN
			sb.WriteString(fmt.Sprintf(`\x%02x`, c))
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
