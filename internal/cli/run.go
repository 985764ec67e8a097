package cli

import (
	"github.com/spf13/cobra"

	"github.com/leshachaplin/tracklog/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the capture server and the flush loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.New(loadConfig).Start()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
