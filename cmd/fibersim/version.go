package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fibersim/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fibersim version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}
