package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/urlmock/packages/core/config"
	"github.com/spf13/cobra"
)

var (
	forceInit      bool
	initFormatFlag string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default urlmock configuration file",
	Long: `Write a configuration file with default values into the current directory.

This creates .urlmock.yaml (or .urlmock.json with --format json).

Examples:
  urlmock init
  urlmock init --format json
  urlmock init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
	initCmd.Flags().StringVar(&initFormatFlag, "format", "yaml", "File format: yaml, json")
}

func initCommand(cmd *cobra.Command, args []string) error {
	var name string
	switch initFormatFlag {
	case "yaml", "yml":
		name = ".urlmock.yaml"
	case "json":
		name = ".urlmock.json"
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unsupported format %q", initFormatFlag))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	configFile := filepath.Join(cwd, name)

	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile)
		}
	}

	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://localhost:3000"
	cfg.Headers = []config.Header{{Name: "Accept-Language", Value: "en"}}

	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'urlmock request GET /health' to record your first fixture.\n")

	return nil
}
