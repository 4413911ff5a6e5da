package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grokkit/grokkit/pkg/grok"
)

var expandFormat string

var expandCmd = &cobra.Command{
	Use:   "expand EXPR",
	Short: "Print the regular expression an expression compiles to",
	Long: `Expand every pattern reference in EXPR and print the resulting regular
expression followed by its capture table: one line per capture group with the
group name and the field it is reported as.

Examples:
  grok expand '%{IP:client} %{WORD:method}'

  # Machine-readable output
  grok expand --format jsonl '%{COMMONAPACHELOG}' | jq .flattened`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	expandCmd.Flags().StringVarP(&expandFormat, "format", "f", "pretty",
		"Output format: jsonl, pretty")
	_ = expandCmd.RegisterFlagCompletionFunc("format", completeFormats)
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	if !validFormats[expandFormat] {
		return fmt.Errorf("unknown format: %s", expandFormat)
	}

	logger := newLogger(cmd.ErrOrStderr(), verbose)
	env, err := loadEnvironment(cmd.Context(), currentLoadConfig(), logger)
	if err != nil {
		return err
	}

	c, err := grok.NewCompiler(env.Registry, env.Options...)
	if err != nil {
		return err
	}
	expr, err := c.Compile(args[0])
	if err != nil {
		return err
	}

	return OutputExpansion(expandFormat, expr, cmd.OutOrStdout())
}
