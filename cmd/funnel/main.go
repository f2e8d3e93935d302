package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"funnelworks/internal/config"
	"funnelworks/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Lead-capture funnel service",
	Long: `funnel serves the Constellation Score quiz, the Funnel Alchemy diagnostic
and the Spellbook ROI calculator behind a shared lead gate, and hands
finished sessions to an SMS call-to-action.

Configuration is read from --config (YAML) and overridden by environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging.Level, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "funnel.yaml", "Path to YAML config")

	// Add commands to root
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(roiCmd)
	rootCmd.AddCommand(smsLinkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
