package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/memeforge/pkg/config"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for memeforge. Scene file arguments
complete to .json documents and --format to the supported output formats.

To load completions:

Bash:
  $ source <(memeforge completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ memeforge completion bash > /etc/bash_completion.d/memeforge
  # macOS:
  $ memeforge completion bash > $(brew --prefix)/etc/bash_completion.d/memeforge

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ memeforge completion zsh > "${fpath[1]}/_memeforge"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ memeforge completion fish | source

  # To load completions for each session, execute once:
  $ memeforge completion fish > ~/.config/fish/completions/memeforge.fish

PowerShell:
  PS> memeforge completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> memeforge completion powershell > memeforge.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeScenes completes positional arguments to scene documents.
func completeScenes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeImages completes positional arguments to image files.
func completeImages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"png", "jpg", "jpeg", "gif", "webp", "bmp", "tif", "tiff"}, cobra.ShellCompDirectiveFilterFileExt
}

// registerFormatCompletion completes a --format flag to the supported
// output formats.
func registerFormatCompletion(cmd *cobra.Command, flag string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Formats, cobra.ShellCompDirectiveNoFileComp
	})
}

// registerAspectCompletion completes an --aspect flag to the canvas presets.
func registerAspectCompletion(cmd *cobra.Command, flag string) {
	_ = cmd.RegisterFlagCompletionFunc(flag, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Presets, cobra.ShellCompDirectiveNoFileComp
	})
}
