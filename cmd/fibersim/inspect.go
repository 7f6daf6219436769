package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"fibersim/internal/catalog"
	"fibersim/internal/config"
	"fibersim/internal/focalplane"
)

var (
	inspectConfigPath string
	inspectSchemaPath string
	inspectTilePath   string
	inspectNeighbors  int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print focal-plane layout or tile catalog summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(inspectConfigPath, inspectSchemaPath)
		if err != nil {
			return err
		}

		if inspectTilePath != "" {
			return inspectTile(cmd, inspectTilePath)
		}
		return inspectLayout(cmd, cfg)
	},
}

func inspectLayout(cmd *cobra.Command, cfg *config.SurveyConfig) error {
	fibers, err := focalplane.LoadCatalog(cfg.FiberCatalog)
	if err != nil {
		return err
	}
	layout := focalplane.Build(fibers, cfg.Positioner)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "fibers: %d\n", len(layout.Fibers))
	fmt.Fprintf(out, "patrol radius: %.3f mm (R1 %.3f + R2 %.3f)\n",
		layout.PatrolRadius(), layout.Positioner.R1, layout.Positioner.R2)

	n := inspectNeighbors
	if n > len(layout.Fibers) {
		n = len(layout.Fibers)
	}
	for slot := 0; slot < n; slot++ {
		f := layout.Fibers[slot]
		fmt.Fprintf(out, "fiber %d (%.2f, %.2f) neighbors:", f.ID, f.X, f.Y)
		for _, j := range layout.Neighbors[slot] {
			nf := layout.Fibers[j]
			fmt.Fprintf(out, " %d(%.2f mm)", nf.ID, nf.Distance(f.X, f.Y))
		}
		fmt.Fprintln(out)
	}
	return nil
}

func inspectTile(cmd *cobra.Command, path string) error {
	pool, err := catalog.LoadTile(path)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tile %d at (%.4f, %.4f): %d targets\n",
		pool.Tile.ID, pool.Tile.RA, pool.Tile.Dec, pool.Len())

	byType := map[string]int{}
	for _, t := range pool.Targets {
		byType[t.Type]++
	}
	types := make([]string, 0, len(byType))
	for typ := range byType {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		fmt.Fprintf(out, "  %-12s %d\n", typ, byType[typ])
	}
	return nil
}

func init() {
	inspectCmd.Flags().StringVar(&inspectConfigPath, "config", "config/survey.yaml", "Path to survey configuration YAML")
	inspectCmd.Flags().StringVar(&inspectSchemaPath, "schema", "schemas/survey.cue", "Path to CUE schema file")
	inspectCmd.Flags().StringVar(&inspectTilePath, "tile", "", "Summarize a single tile catalog file instead of the layout")
	inspectCmd.Flags().IntVar(&inspectNeighbors, "neighbors", 5, "Number of fibers to print neighbor tables for")
}
