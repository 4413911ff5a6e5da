package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/grokkit/grokkit/internal/tailer"
	"github.com/grokkit/grokkit/pkg/grok/library"
)

// warningRateLimit is the maximum number of read warnings printed per second.
const warningRateLimit = 10

var (
	// tail flags
	fromStart bool
	poll      bool
)

var tailCmd = &cobra.Command{
	Use:   "tail FILE EXPR",
	Short: "Follow a file and print matches as lines are appended",
	Long: `Follow FILE like "tail -F" and match every new line against EXPR (and the
expressions of any --library files) until interrupted.

Examples:
  # Follow an application log
  grok tail app.log '%{TIMESTAMP_ISO8601:ts} %{LOGLEVEL:level} %{GREEDYDATA:msg}'

  # Process the existing content first
  grok tail --from-start access.log '%{COMMONAPACHELOG}'

  # Pipe to jq for filtering
  grok tail app.log '%{LOGLEVEL:level} %{GREEDYDATA:msg}' | jq 'select(.fields.level == "ERROR")'`,
	Args: cobra.ExactArgs(2),
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&format, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	tailCmd.Flags().StringSliceVarP(&libraryFiles, "library", "l", nil,
		"YAML library files whose expressions are matched too")
	tailCmd.Flags().BoolVar(&firstOnly, "first", false,
		"Stop at the first expression that matches each line")
	tailCmd.Flags().BoolVar(&fromStart, "from-start", false,
		"Read the existing content of the file before following")
	tailCmd.Flags().BoolVar(&poll, "poll", false,
		"Poll for changes instead of using filesystem notifications")
	_ = tailCmd.RegisterFlagCompletionFunc("format", completeFormats)
	_ = tailCmd.RegisterFlagCompletionFunc("library", completeLibraries)
	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	if !validFormats[format] {
		return fmt.Errorf("unknown format: %s", format)
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cmd.ErrOrStderr(), verbose)
	env, err := loadEnvironment(ctx, currentLoadConfig(), logger)
	if err != nil {
		return err
	}

	parser, err := buildParser(env, args[1], append(env.Libraries, libraryFiles...), firstOnly)
	if err != nil {
		return err
	}

	cfg := tailer.DefaultConfig()
	cfg.FromStart = fromStart
	cfg.Poll = poll

	t, err := tailer.New(ctx, args[0], cfg)
	if err != nil {
		return err
	}
	defer func() { _ = t.Stop() }()
	logger.Debug("started tailing", "path", args[0], "from_start", cfg.FromStart, "poll", cfg.Poll)

	return followLines(ctx, t, parser, format, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// lineSource delivers followed lines; *tailer.Tailer implements it.
type lineSource interface {
	Lines() <-chan string
	Errors() <-chan error
}

// followLines matches lines from src until it is exhausted or ctx is done.
// Read errors are reported to errOut when verbose and do not stop following.
// A file that keeps failing cannot flood errOut: excess warnings are dropped.
func followLines(ctx context.Context, src lineSource, parser *library.Parser, format string, out, errOut io.Writer) error {
	limiter := rate.NewLimiter(warningRateLimit, warningRateLimit)
	for {
		select {
		case line, ok := <-src.Lines():
			if !ok {
				return nil // Channel closed
			}
			result, err := parser.ParseLine(ctx, line)
			if err != nil {
				return nil // Context cancelled mid-line
			}
			for _, rec := range result.Records {
				if err := OutputRecord(format, rec, out); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
			}

		case err, ok := <-src.Errors():
			if !ok {
				return nil // Channel closed
			}
			if verbose && limiter.Allow() {
				fmt.Fprintf(errOut, "warning: %v\n", err)
			}

		case <-ctx.Done():
			return nil
		}
	}
}
