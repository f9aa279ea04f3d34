package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/urlmock/packages/appinfo"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "urlmock version %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", buildTime)
		if stamp := appinfo.VersionString(appInfo()); stamp != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Fixture stamp: %s\n", stamp)
		}
	},
}
