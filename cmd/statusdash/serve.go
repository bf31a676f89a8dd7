package main

import (
	"fmt"
	"statusdash/internal/di"
	"statusdash/internal/structures"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. The configuration document is created from the
template (or built-in defaults) when missing. Runs until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to the process config file (yaml)")
	serveCmd.Flags().BoolP("debug", "d", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	app, err := di.InitApp(&structures.CliFlags{ConfigPath: configPath, DebugMode: debug})
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	return app.Run()
}
