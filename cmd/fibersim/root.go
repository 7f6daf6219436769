package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fibersim",
	Short: "Multi-object spectrograph survey simulation toolkit",
	Long: "fibersim assigns fiber positioners to catalog targets, tile by tile,\n" +
		"and records the resulting survey observation state.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initResultsCmd)
	rootCmd.AddCommand(versionCmd)
}
