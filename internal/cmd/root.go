// Package cmd implements the distread command-line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kaitan-stock/distributed/internal/config"
	"github.com/kaitan-stock/distributed/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "distread",
	Short: "Distributed object-store reads",
	Long: `distread lists S3 keys and fans per-key reads out across a worker pool.

Listings are lexicographically ordered and support delimiter grouping.
Reads can run eagerly (submit now, gather results) or lazily (describe
the task plan, execute later).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize()
	},
}

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// cfg is the effective configuration, loaded in initialize.
	cfg *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./distread.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (json|console)")
}

// initialize loads configuration and builds the CLI logger. Flags override
// file and environment values.
func initialize() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}

	return observability.Init(level, format)
}

// Execute runs the root command with signal-aware cancellation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer observability.Sync()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already has SilenceErrors; report once here.
		rootCmd.PrintErrln("Error:", err)
		stop()
		os.Exit(1)
	}
}
