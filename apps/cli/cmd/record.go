package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/urlmock/packages/proxy"
	"github.com/spf13/cobra"
)

var (
	recordPortFlag    int
	recordTargetFlag  string
	recordExcludeFlag string
	recordDedupeFlag  bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Start a recording proxy that captures responses as fixtures",
	Long: `Start an HTTP proxy that forwards every request to the target and stores
each JSON response as the fixture for its path.

The proxy:
- Forwards all requests to the target server
- Captures responses whose body is valid JSON, keyed by request path
- Leaves other responses untouched
- Prints a summary on exit

Examples:
  urlmock record --port 8080 --target https://api.example.com
  urlmock record --port 8080 --target https://api.example.com --exclude "/health,/metrics"
  urlmock record --port 8080 --target https://api.example.com --dedupe`,
	Args: cobra.NoArgs,
	RunE: recordCommand,
}

func init() {
	recordCmd.Flags().IntVarP(&recordPortFlag, "port", "p", getEnvInt("URLMOCK_PROXY_PORT", 8080), "Port to run the proxy on (env: URLMOCK_PROXY_PORT)")
	recordCmd.Flags().StringVarP(&recordTargetFlag, "target", "t", "", "Target URL to proxy to (required)")
	recordCmd.Flags().StringVar(&recordExcludeFlag, "exclude", "", "Paths to exclude from recording (comma-separated)")
	recordCmd.Flags().BoolVar(&recordDedupeFlag, "dedupe", false, "Keep only the first response per path")

	_ = recordCmd.MarkFlagRequired("target")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func recordCommand(cmd *cobra.Command, args []string) error {
	if recordTargetFlag == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("target URL is required (--target or -t)"))
	}

	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	recorder := proxy.NewRecorder(rt.store,
		proxy.WithPort(recordPortFlag),
		proxy.WithTargetURL(recordTargetFlag),
		proxy.WithExclude(splitList(recordExcludeFlag)),
		proxy.WithDeduplicate(recordDedupeFlag),
		proxy.WithLogger(rt.logger),
	)

	if err := recorder.StartWithContext(cmd.Context()); err != nil {
		return withExitCode(ExitNetworkError, err)
	}

	recordings := recorder.GetRecordings()
	if len(recordings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No requests recorded")
		return nil
	}

	captured := 0
	for _, r := range recordings {
		if r.Captured {
			captured++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nProxied %d requests, captured %d fixtures into %s\n",
		len(recordings), captured, rt.store.Dir())
	return nil
}
