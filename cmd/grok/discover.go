package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grokkit/grokkit/pkg/grok"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [TEXT...]",
	Short: "Guess an expression for sample lines",
	Long: `Guess an expression for each sample: every whitespace-separated token is
replaced by the most specific pattern that matches it whole, and tokens no
pattern matches are kept as literals. Samples are read from standard input,
one per line, when no TEXT is given.

Examples:
  grok discover '10.0.0.1 GET /index.html 200'
  head -n 5 app.log | grok discover`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr(), verbose)
	env, err := loadEnvironment(cmd.Context(), currentLoadConfig(), logger)
	if err != nil {
		return err
	}

	d, err := grok.NewDiscoverer(env.Registry, env.Options...)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return discoverLines(d, strings.NewReader(strings.Join(args, "\n")), cmd.OutOrStdout())
	}
	return discoverLines(d, cmd.InOrStdin(), cmd.OutOrStdout())
}

// discoverLines writes one discovered expression per non-blank input line.
func discoverLines(d *grok.Discoverer, r io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		guess := d.Discover(scanner.Text())
		if guess == "" {
			continue
		}
		if _, err := fmt.Fprintln(out, guess); err != nil {
			return err
		}
	}
	return scanner.Err()
}
