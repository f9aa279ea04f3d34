package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a shell completion script for urlmock and write it to stdout.

Examples:
  source <(urlmock completion bash)
  urlmock completion zsh > "${fpath[1]}/_urlmock"
  urlmock completion fish > ~/.config/fish/completions/urlmock.fish
  urlmock completion powershell | Out-String | Invoke-Expression`,
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
		return withExitCode(ExitUsageError, fmt.Errorf("unsupported shell %q", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
	mocksShowCmd.ValidArgsFunction = completeEndpoints
	mocksRmCmd.ValidArgsFunction = completeEndpoints
}

// completeEndpoints offers the endpoints in the fixture catalog
func completeEndpoints(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer rt.Close()

	var endpoints []string
	for _, record := range rt.store.ListAll() {
		endpoints = append(endpoints, record.Endpoint)
	}
	return endpoints, cobra.ShellCompDirectiveNoFileComp
}
