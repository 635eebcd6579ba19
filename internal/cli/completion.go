package cli

import "github.com/spf13/cobra"

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for memodesk.

To load completions:

Bash:
  $ source <(memodesk completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ memodesk completion bash > /etc/bash_completion.d/memodesk
  # macOS:
  $ memodesk completion bash > $(brew --prefix)/etc/bash_completion.d/memodesk

Zsh:
  $ source <(memodesk completion zsh)
  # To load completions for each session, execute once:
  $ memodesk completion zsh > "${fpath[1]}/_memodesk"

Fish:
  $ memodesk completion fish | source
  # To load completions for each session, execute once:
  $ memodesk completion fish > ~/.config/fish/completions/memodesk.fish

PowerShell:
  PS> memodesk completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}
