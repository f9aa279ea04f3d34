package cmd

import (
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/urlmock/packages/mock"
	"github.com/spf13/cobra"
)

var (
	servePortFlag  int
	serveDelayFlag string
	serveWatchFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recorded fixtures over HTTP",
	Long: `Start an HTTP server that answers each request with the fixture recorded
for its path, using the recorded status code. Paths without a fixture get 404.

Examples:
  urlmock serve
  urlmock serve --port 3000 --delay 100ms
  urlmock serve --watch`,
	Args: cobra.NoArgs,
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().IntVarP(&servePortFlag, "port", "p", getEnvInt("URLMOCK_PORT", 3000), "Port to run the server on (env: URLMOCK_PORT)")
	serveCmd.Flags().StringVarP(&serveDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	serveCmd.Flags().BoolVarP(&serveWatchFlag, "watch", "w", false, "Reload fixtures when files change")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if serveDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(serveDelayFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", serveDelayFlag, err))
		}
	}

	rt, err := openRuntime(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	server := mock.NewServer(rt.store,
		mock.WithPort(servePortFlag),
		mock.WithDelay(delay),
		mock.WithWatch(serveWatchFlag),
		mock.WithLogger(rt.logger),
	)

	if err := server.StartWithContext(cmd.Context()); err != nil {
		return withExitCode(ExitNetworkError, err)
	}
	return nil
}
