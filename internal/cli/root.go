package cli

import (
	"github.com/spf13/cobra"

	"github.com/leshachaplin/tracklog/internal/config"
)

var (
	rootCmd = &cobra.Command{
		Use:   "tracklog",
		Short: "Client-side telemetry agent for the block editor",
		Long: `tracklog captures window and workspace events, buffers them per stream
and ships each stream to the collector as one batch per flush tick.`,
		SilenceUsage: true,
	}

	configPath string
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}
