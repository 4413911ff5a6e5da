package main

import (
	"github.com/spf13/cobra"

	"github.com/grokkit/grokkit/pkg/grok/engine"
)

var noDescriptions bool

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for grok.

Bash:
  $ source <(grok completion bash)

Zsh:
  $ grok completion zsh > "${fpath[1]}/_grok"

Fish:
  $ grok completion fish | source

PowerShell:
  PS> grok completion powershell | Out-String | Invoke-Expression

Flag values such as --engine and --format complete as well.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		out := cmd.OutOrStdout()
		desc := !noDescriptions

		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(out, desc)
		case "zsh":
			if desc {
				return root.GenZshCompletion(out)
			}
			return root.GenZshCompletionNoDesc(out)
		case "fish":
			return root.GenFishCompletion(out, desc)
		case "powershell":
			if desc {
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return root.GenPowerShellCompletion(out)
		}
		return nil
	},
}

// completeFormats offers the output formats.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"jsonl\tJSON Lines", "pretty\thuman-readable"}, cobra.ShellCompDirectiveNoFileComp
}

// completeEngines offers the registered engine names.
func completeEngines(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return engine.Names(), cobra.ShellCompDirectiveNoFileComp
}

// completeLibraries restricts --library to YAML files.
func completeLibraries(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

func init() {
	completionCmd.Flags().BoolVar(&noDescriptions, "no-descriptions", false,
		"Disable completion descriptions")
	rootCmd.AddCommand(completionCmd)
}
