package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fibersim/internal/config"
	"fibersim/internal/logging"
	"fibersim/internal/survey"
)

var (
	initConfigPath string
	initSchemaPath string
)

var initResultsCmd = &cobra.Command{
	Use:   "init-results",
	Short: "Initialize per-tile results files",
	Long: "init-results writes one results file per tile catalog, with every target\n" +
		"unassigned and zero observations. Run it once before the first assign pass.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(initConfigPath, initSchemaPath)
		if err != nil {
			return err
		}
		if cfg.ResultsDir == "" {
			return fmt.Errorf("config %s: results_dir is required for init-results", initConfigPath)
		}
		if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
			return err
		}
		return survey.InitResults(cfg, logging.New(false))
	},
}

func init() {
	initResultsCmd.Flags().StringVar(&initConfigPath, "config", "config/survey.yaml", "Path to survey configuration YAML")
	initResultsCmd.Flags().StringVar(&initSchemaPath, "schema", "schemas/survey.cue", "Path to CUE schema file")
}
