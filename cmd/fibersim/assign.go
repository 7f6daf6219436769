package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fibersim/internal/assign"
	"fibersim/internal/config"
	"fibersim/internal/focalplane"
	"fibersim/internal/logging"
	"fibersim/internal/results"
	"fibersim/internal/survey"
)

var (
	assignConfigPath string
	assignSchemaPath string
	assignPrintOnly  bool
	assignLogFile    string
	assignTUI        bool
	assignWorkers    int
	assignPolicy     string
	assignVerbose    bool
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Run fiber-target assignment over a directory of tiles",
	Long: "assign loads the fiber catalog and every tile catalog in the configured\n" +
		"directory, runs one greedy assignment pass per tile, and writes assignment\n" +
		"rows, tile summaries, and survey observation counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(assignConfigPath, assignSchemaPath)
		if err != nil {
			return err
		}
		if assignWorkers > 0 {
			cfg.Workers = assignWorkers
		}
		if assignPolicy != "" {
			cfg.AssignmentPolicy = assignPolicy
		}

		logger := logging.New(assignVerbose)

		fibers, err := focalplane.LoadCatalog(cfg.FiberCatalog)
		if err != nil {
			return err
		}
		layout := focalplane.Build(fibers, cfg.Positioner)

		engine, err := assign.NewEngine(assign.Policy(cfg.AssignmentPolicy))
		if err != nil {
			return err
		}

		writer, summaryWriter, tui, cleanup, err := newWriters(assignPrintOnly, assignLogFile, assignTUI)
		if err != nil {
			return err
		}
		defer cleanup()

		runID := os.Getenv("FIBERSIM_RUN_ID")
		if runID == "" {
			runID = uuid.New().String()
		}

		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), logger))
		defer cancel()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigs
			cancel()
		}()

		store := results.NewObservationStore()
		runner := survey.NewRunner(runID, cfg, layout, engine, writer, summaryWriter, store, logger)
		if _, err := runner.Run(ctx); err != nil {
			return err
		}

		// Keep a TUI on screen until the user dismisses it.
		if tui != nil {
			tui.Wait()
		}
		return nil
	},
}

func init() {
	assignCmd.Flags().StringVar(&assignConfigPath, "config", "config/survey.yaml", "Path to survey configuration YAML")
	assignCmd.Flags().StringVar(&assignSchemaPath, "schema", "schemas/survey.cue", "Path to CUE schema file")
	assignCmd.Flags().BoolVar(&assignPrintOnly, "print-only", false, "Print assignment rows to STDOUT instead of writing to DB")
	assignCmd.Flags().StringVar(&assignLogFile, "log-file", "", "Path to export assignment rows (JSONL)")
	assignCmd.Flags().BoolVar(&assignTUI, "tui", false, "Render tile summaries in a terminal UI")
	assignCmd.Flags().IntVar(&assignWorkers, "workers", 0, "Tile workers (overrides config when > 0)")
	assignCmd.Flags().StringVar(&assignPolicy, "policy", "", "Assignment policy: snapshot or live (overrides config)")
	assignCmd.Flags().BoolVar(&assignVerbose, "verbose", false, "Enable debug logging")
}
