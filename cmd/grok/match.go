package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grokkit/grokkit/internal/safefile"
	"github.com/grokkit/grokkit/pkg/grok/library"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

var (
	// match flags
	format       string
	libraryFiles []string
	firstOnly    bool
)

var matchCmd = &cobra.Command{
	Use:   "match EXPR [FILE...]",
	Short: "Match lines against an expression and print the extracted fields",
	Long: `Match every line of the given files (or standard input) against EXPR and
print one record per match.

Records are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq. Expressions from YAML
library files are matched as well; pass "" as EXPR to use libraries only.

Examples:
  # Extract fields from an access log
  grok match '%{COMMONAPACHELOG}' access.log

  # Read from standard input
  tail -n 100 app.log | grok match '%{TIMESTAMP_ISO8601:ts} %{LOGLEVEL:level} %{GREEDYDATA:msg}'

  # Human-readable output
  grok match --format pretty '%{IP:client}' access.log

  # Match the expressions of a library file only
  grok match --library nginx.yaml '' access.log`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&format, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	matchCmd.Flags().StringSliceVarP(&libraryFiles, "library", "l", nil,
		"YAML library files whose expressions are matched too")
	matchCmd.Flags().BoolVar(&firstOnly, "first", false,
		"Stop at the first expression that matches each line")
	_ = matchCmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = matchCmd.RegisterFlagCompletionFunc("library", completeLibraries)
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	if !validFormats[format] {
		return fmt.Errorf("unknown format: %s", format)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cmd.ErrOrStderr(), verbose)
	env, err := loadEnvironment(ctx, currentLoadConfig(), logger)
	if err != nil {
		return err
	}

	parser, err := buildParser(env, args[0], append(env.Libraries, libraryFiles...), firstOnly)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	inputs := args[1:]
	if len(inputs) == 0 {
		_, err := matchLines(ctx, parser, cmd.InOrStdin(), format, out, logger)
		return err
	}

	for i, path := range inputs {
		if err := matchFile(ctx, parser, path, format, out, logger); err != nil {
			return fmt.Errorf("input file %d: %w", i+1, err)
		}
	}
	return nil
}

func matchFile(ctx context.Context, parser *library.Parser, path, format string, out io.Writer, logger *slog.Logger) error {
	if path == "-" {
		_, err := matchLines(ctx, parser, os.Stdin, format, out, logger)
		return err
	}

	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		return safefile.SanitizePathError(err)
	}
	defer f.Close()

	n, err := matchLines(ctx, parser, f, format, out, logger)
	logger.Debug("matched file", "path", path, "records", n)
	return err
}

// matchLines parses every line of r and writes one record per match.
// Returns the number of records written.
func matchLines(ctx context.Context, parser *library.Parser, r io.Reader, format string, out io.Writer, logger *slog.Logger) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	written := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		result, err := parser.ParseLine(ctx, trimCR(scanner.Text()))
		if err != nil {
			return written, err
		}
		if !result.Matched {
			logger.Debug("no match", "line", lineNum)
			continue
		}
		for _, rec := range result.Records {
			if err := OutputRecord(format, rec, out); err != nil {
				return written, fmt.Errorf("output error: %w", err)
			}
			written++
		}
	}
	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("reading input: %w", safefile.SanitizePathError(err))
	}
	return written, nil
}

func trimCR(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}
