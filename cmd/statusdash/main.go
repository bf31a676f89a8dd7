// Command statusdash runs the status dashboard backend.
//
//	statusdash serve -c /etc/statusdash/statusdash.yaml
//	statusdash validate /var/lib/statusdash/config.json
//	statusdash defaults > default-config.json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// set via -ldflags "-X main.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "statusdash",
	Short: "Status dashboard backend",
	Long: `StatusDash serves the dashboard configuration document and the widget
payload cache over HTTP. State lives under STATUSDASH_STATE_DIR
(default /var/lib/statusdash).`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "statusdash %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
