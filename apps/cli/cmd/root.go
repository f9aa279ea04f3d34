package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	envFileFlag   string
	baseURLFlag   string
	dataDirFlag   string
	logLevelFlag  string
	logFormatFlag string
	noColorFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "urlmock",
	Short: "Record, replay or fail HTTP calls on demand.",
	Long: `urlmock dispatches HTTP calls against a base URL and keeps the JSON it
receives as fixtures. The same calls can later be replayed from those
fixtures, or failed on purpose, without touching the network.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if msg := err.Error(); msg != "" {
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), msg)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFlag, "config", getEnvString("URLMOCK_CONFIG", ""), "Path to config file (env: URLMOCK_CONFIG)")
	flags.StringVar(&envFileFlag, "env-file", getEnvString("URLMOCK_ENV_FILE", ""), "Path to .env file used for ${VAR} references in the config (env: URLMOCK_ENV_FILE)")
	flags.StringVar(&baseURLFlag, "base-url", getEnvString("URLMOCK_BASE_URL", ""), "Base URL prepended to endpoints (env: URLMOCK_BASE_URL)")
	flags.StringVar(&dataDirFlag, "data-dir", getEnvString("URLMOCK_DATA_DIR", ""), "Directory holding Mocks/ and settings.db (env: URLMOCK_DATA_DIR)")
	flags.StringVar(&logLevelFlag, "log-level", getEnvString("URLMOCK_LOG_LEVEL", ""), "Log level: debug, info, warn, error (env: URLMOCK_LOG_LEVEL)")
	flags.StringVar(&logFormatFlag, "log-format", getEnvString("URLMOCK_LOG_FORMAT", ""), "Log format: console, json (env: URLMOCK_LOG_FORMAT)")
	flags.BoolVar(&noColorFlag, "no-color", getEnvBool("URLMOCK_NO_COLOR", false), "Disable colored output (env: URLMOCK_NO_COLOR)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withExitCode(ExitUsageError, err)
	})

	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(mocksCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
