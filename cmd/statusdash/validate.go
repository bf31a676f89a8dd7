package main

import (
	"fmt"
	"statusdash/internal/models"
	"statusdash/internal/persistence"
	"statusdash/internal/providers"
	"statusdash/internal/structures"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a configuration document",
	Long: `Parse and validate a configuration document without starting the server.
Archived quarantine files (*.zst) are decompressed first.

Exit codes:
  0 - document is valid
  1 - document is invalid (first error printed to stderr)`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the built-in default configuration document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := models.MarshalDocument(models.NewDefaultDocument())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(defaultsCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	compressor, err := persistence.NewZstdCompressor()
	if err != nil {
		return err
	}
	defer compressor.Close()
	logger, err := providers.NewLogProvider(&structures.Config{Logger: structures.LoggerConfig{Level: "error"}})
	if err != nil {
		return err
	}
	defer logger.Close()
	files := persistence.NewFileManager(logger)
	data, err := files.ReadMaybeArchived(args[0], compressor)
	if err != nil {
		return err
	}
	doc, err := models.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration is valid!\n")
	fmt.Fprintf(out, "  Timezone:  %s\n", doc.Display.Timezone)
	fmt.Fprintf(out, "  Rotation:  %s every %ds\n", doc.Display.Rotation, doc.Display.ModuleCycleSeconds)
	fmt.Fprintf(out, "  Modules:   %d\n", len(doc.Display.Modules))
	fmt.Fprintf(out, "  UI extras: %d\n", len(doc.UI.Extra))
	return nil
}
