// Package cli provides the command-line interface for resume-batch.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/resume-extractor/internal/app"
	"github.com/joseph-ayodele/resume-extractor/internal/common"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath string
	verbose    bool

	application *app.App
	logCleanup  func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "resume-batch",
	Short: "Extract structured candidate records from resumes",
	Long: `resume-batch turns a PDF or DOCX resume, or a ZIP bundle of them, into
structured candidate records and exports them as XLSX, CSV or JSON.

Configuration comes from the environment (and a .env file when present),
optionally overlaid with a YAML file passed via --config.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip wiring for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg, err := common.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := common.ParseLevel(cfg.Logging.Level)
		if verbose {
			level = slog.LevelDebug
		}
		var logger *slog.Logger
		logger, logCleanup = common.SetupLogger(cfg.Logging.File, level)
		slog.SetDefault(logger)

		application, err = app.Build(context.Background(), cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application != nil {
			if err := application.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close extraction client: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file overlaid on the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(atsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "resume-batch %s\n", Version)
	},
}
