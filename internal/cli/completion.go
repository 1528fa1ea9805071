package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "completion [bash|zsh|fish]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for shopsync.

To load completions:

Bash:
  $ source <(shopsync completion bash)
  # Or add to ~/.bashrc:
  $ echo 'source <(shopsync completion bash)' >> ~/.bashrc

Zsh:
  $ source <(shopsync completion zsh)
  # Or add to ~/.zshrc:
  $ echo 'source <(shopsync completion zsh)' >> ~/.zshrc

Fish:
  $ shopsync completion fish | source
  # Or add to config:
  $ shopsync completion fish > ~/.config/fish/completions/shopsync.fish
`,
		ValidArgs:             []string{"bash", "zsh", "fish"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			default:
				return rootCmd.GenFishCompletion(out, true)
			}
		},
	})
}
