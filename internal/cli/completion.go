package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/errors"
)

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for the given shell to stdout.

Graph file arguments complete to .toml, .yaml, .yml and .json files.

  bash:        source <(flowcanvas completion bash)
  zsh:         flowcanvas completion zsh > "${fpath[1]}/_flowcanvas"
  fish:        flowcanvas completion fish | source
  powershell:  flowcanvas completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return genCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}
}

func genCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return errors.New(errors.ErrCodeUnsupported, "no completion for shell %q", shell)
}

// graphExtensions are the file extensions graph arguments complete to.
var graphExtensions = []string{"toml", "yaml", "yml", "json"}

// completeGraphFiles completes the optional graph file argument.
func completeGraphFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return graphExtensions, cobra.ShellCompDirectiveFilterFileExt
}
