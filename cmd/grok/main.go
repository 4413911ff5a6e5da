// Command grok compiles grok expressions and matches them against text.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/grokkit/grokkit/pkg/grok"
)

var (
	// global flags
	verbose       bool
	patternFiles  []string
	patternsDir   string
	noBase        bool
	engineName    string
	maxExpansions int
)

var rootCmd = &cobra.Command{
	Use:   "grok",
	Short: "Compile grok expressions and extract fields from text",
	Long: `grok expands expressions such as "%{IP:client} %{WORD:method}" into
regular expressions built from a library of named patterns, and matches them
against text to extract named fields.

A base library of common patterns is built in. More patterns are read from
files given with --patterns and from the patterns directory (--patterns-dir,
the GROK_PATTERNS_DIR environment variable, or the default locations).
In that directory, files with no extension or a .grok extension are pattern
files and *.yaml/*.yml files are expression libraries; anything else is
ignored.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging to stderr")
	rootCmd.PersistentFlags().StringSliceVarP(&patternFiles, "patterns", "p", nil,
		"Pattern files to load (NAME FRAGMENT per line)")
	rootCmd.PersistentFlags().StringVar(&patternsDir, "patterns-dir", "",
		"Directory of pattern files (no extension or .grok) and YAML libraries (auto-detected if not specified)")
	rootCmd.PersistentFlags().BoolVar(&noBase, "no-base", false,
		"Do not load the built-in base patterns")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "stdlib",
		"Regular expression engine: stdlib, regexp2, coregex")
	rootCmd.PersistentFlags().IntVar(&maxExpansions, "max-expansions", grok.DefaultMaxExpansions,
		"Maximum number of reference expansions per expression")
	_ = rootCmd.RegisterFlagCompletionFunc("engine", completeEngines)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger returns a debug logger writing to w when verbose is set, and a
// logger that discards everything otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
