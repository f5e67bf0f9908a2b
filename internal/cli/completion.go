// Package cli provides the completion subcommand for cloudrules.
package cli

import (
	"github.com/spf13/cobra"
)

// NewCompletionCmd creates the completion subcommand with shell-specific subcommands.
func NewCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cloudrules.

To load completions:

Bash:
  $ source <(cloudrules completion bash)

Zsh:
  $ cloudrules completion zsh > "${fpath[1]}/_cloudrules"

Fish:
  $ cloudrules completion fish | source

PowerShell:
  PS> cloudrules completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
