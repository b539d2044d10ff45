package cli

import (
	"io"

	"github.com/spf13/cobra"
)

var completionScripts = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       (*cobra.Command).GenBashCompletion,
	"zsh":        (*cobra.Command).GenZshCompletion,
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for tracetube.

  bash:        source <(tracetube completion bash)
  zsh:         tracetube completion zsh > "${fpath[1]}/_tracetube"
  fish:        tracetube completion fish > ~/.config/fish/completions/tracetube.fish
  powershell:  tracetube completion powershell | Out-String | Invoke-Expression

zsh needs compinit enabled; start a new shell after installing the script.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionScripts[args[0]](cmd.Root(), stdout)
		},
	}
}
