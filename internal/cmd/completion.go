package cmd

import (
	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for modinstaller.

To load completions:

Bash:
  $ source <(modinstaller completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ modinstaller completion bash > /etc/bash_completion.d/modinstaller
  # macOS:
  $ modinstaller completion bash > $(brew --prefix)/etc/bash_completion.d/modinstaller

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ modinstaller completion zsh > "${fpath[1]}/_modinstaller"

  # You will need to start a new shell for this setup to take effect.

  # Oh My Zsh:
  $ mkdir -p ~/.oh-my-zsh/completions
  $ modinstaller completion zsh > ~/.oh-my-zsh/completions/_modinstaller

Fish:
  $ modinstaller completion fish > ~/.config/fish/completions/modinstaller.fish

PowerShell:
  PS> modinstaller completion powershell | Out-String | Invoke-Expression
`,
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
}
