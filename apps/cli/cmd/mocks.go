package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
	"github.com/abdul-hamid-achik/urlmock/packages/output"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	mocksJSONFlag    bool
	mocksVerboseFlag bool
	mocksQueryFlag   string
)

var mocksCmd = &cobra.Command{
	Use:   "mocks",
	Short: "Inspect and manage recorded fixtures",
	Long: `Inspect and manage the fixtures recorded under <data-dir>/Mocks.

Examples:
  urlmock mocks list
  urlmock mocks list --json
  urlmock mocks show /users/1 --query name
  urlmock mocks rm /users/1
  urlmock mocks prune
  urlmock mocks watch`,
}

var mocksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Args:  cobra.NoArgs,
	RunE:  mocksListCommand,
}

var mocksShowCmd = &cobra.Command{
	Use:   "show ENDPOINT",
	Short: "Print the fixture recorded for ENDPOINT",
	Args:  cobra.ExactArgs(1),
	RunE:  mocksShowCommand,
}

var mocksRmCmd = &cobra.Command{
	Use:   "rm ENDPOINT",
	Short: "Remove the fixture recorded for ENDPOINT",
	Args:  cobra.ExactArgs(1),
	RunE:  mocksRmCommand,
}

var mocksPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop catalog entries whose fixture file is gone",
	Args:  cobra.NoArgs,
	RunE:  mocksPruneCommand,
}

var mocksWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print fixture changes as they happen",
	Args:  cobra.NoArgs,
	RunE:  mocksWatchCommand,
}

func init() {
	mocksCmd.PersistentFlags().BoolVar(&mocksJSONFlag, "json", false, "Output JSON")
	mocksListCmd.Flags().BoolVarP(&mocksVerboseFlag, "verbose", "v", false, "Show fixture file paths")
	mocksShowCmd.Flags().StringVarP(&mocksQueryFlag, "query", "q", "", "Print only the value at this gjson path")

	mocksCmd.AddCommand(mocksListCmd)
	mocksCmd.AddCommand(mocksShowCmd)
	mocksCmd.AddCommand(mocksRmCmd)
	mocksCmd.AddCommand(mocksPruneCmd)
	mocksCmd.AddCommand(mocksWatchCmd)
}

func mocksFormatter(cmd *cobra.Command, rt *runtime) output.Formatter {
	format := "console"
	if mocksJSONFlag {
		format = "json"
	}
	return output.New(format, cmd.OutOrStdout(), mocksVerboseFlag, rt.cfg.GetNoColor())
}

func mocksListCommand(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	mocksFormatter(cmd, rt).FormatFixtures(rt.store.ListAll())
	return nil
}

func mocksShowCommand(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	endpoint := args[0]
	record, ok := rt.store.Get(endpoint)
	switch {
	case !ok:
		return withExitCode(ExitFailure, fmt.Errorf("no fixture recorded for %s", endpoint))
	case !record.HasContent():
		return withExitCode(ExitFailure, fmt.Errorf("fixture file for %s is missing: %s", endpoint, record.Path))
	}

	selected := record.Query(mocksQueryFlag)
	if !selected.Exists() {
		return withExitCode(ExitFailure, fmt.Errorf("no value at %q", mocksQueryFlag))
	}

	text := selected.Raw
	if selected.Type == gjson.String && !mocksJSONFlag {
		text = selected.String()
	}
	if !mocksJSONFlag {
		text = output.Pretty(text)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func mocksRmCommand(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, ok := rt.store.Get(args[0]); !ok {
		return withExitCode(ExitFailure, fmt.Errorf("no fixture recorded for %s", args[0]))
	}
	if err := rt.store.Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", args[0])
	return nil
}

func mocksPruneCommand(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	n, err := rt.store.Prune()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries\n", n)
	return nil
}

func mocksWatchCommand(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	formatter := mocksFormatter(cmd, rt)
	rt.logger.Info("watching fixtures, press Ctrl+C to stop")

	return rt.store.Watch(cmd.Context(), func(ev mockstore.Event) {
		formatter.FormatEvent(ev)
	})
}
