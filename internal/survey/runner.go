// Survey runner orchestrating tile assignment passes
package survey

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"fibersim/internal/assign"
	"fibersim/internal/catalog"
	"fibersim/internal/config"
	"fibersim/internal/focalplane"
	"fibersim/internal/results"
)

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]results.AssignmentRow) error
}

// Stats aggregates a whole run.
type Stats struct {
	Tiles      int
	Targets    int
	Assigned   int
	FreeFibers int
}

// Runner drives one assignment run over a directory of tile catalogs. Tile
// passes are independent and may execute on several workers; result writing
// and observation counting happen on the feeding goroutine, in ascending
// tile-id order regardless of completion order, so output is deterministic.
type Runner struct {
	runID         string
	cfg           *config.SurveyConfig
	layout        *focalplane.Layout
	engine        *assign.Engine
	writer        results.Writer
	summaryWriter results.SummaryWriter
	store         *results.ObservationStore
	logger        *slog.Logger
}

// NewRunner wires a runner. summaryWriter may be nil.
func NewRunner(runID string, cfg *config.SurveyConfig, layout *focalplane.Layout,
	engine *assign.Engine, writer results.Writer, summaryWriter results.SummaryWriter,
	store *results.ObservationStore, logger *slog.Logger) *Runner {
	return &Runner{
		runID:         runID,
		cfg:           cfg,
		layout:        layout,
		engine:        engine,
		writer:        writer,
		summaryWriter: summaryWriter,
		store:         store,
		logger:        logger,
	}
}

// tileOutput is one finished tile pass.
type tileOutput struct {
	pool    *catalog.TargetPool
	rows    []results.AssignmentRow
	summary results.TileSummaryRow
}

// Run scans the tile directory, runs one assignment pass per tile, writes
// the results, and updates observation counts. It returns once every tile is
// processed or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	files, err := catalog.ListTileFiles(r.cfg.TileDir, r.cfg.TilePattern)
	if err != nil {
		return Stats{}, err
	}
	r.logger.Info("starting assignment run",
		"run_id", r.runID,
		"tiles", len(files),
		"policy", string(r.engine.Policy()),
		"workers", r.cfg.Workers,
	)

	pools := make([]*catalog.TargetPool, 0, len(files))
	for _, f := range files {
		pool, err := catalog.LoadTile(f)
		if err != nil {
			return Stats{}, err
		}
		ids := make([]int64, pool.Len())
		for i := range pool.Targets {
			ids[i] = pool.Targets[i].ID
		}
		r.store.AddTargets(ids)
		pools = append(pools, pool)
	}
	sort.SliceStable(pools, func(i, j int) bool { return pools[i].Tile.ID < pools[j].Tile.ID })

	outputs := make([]tileOutput, len(pools))
	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := r.cfg.Workers
	if workers > len(pools) {
		workers = len(pools)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outputs[i] = r.processTile(pools[i])
			}
		}()
	}
feed:
	for i := range pools {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, out := range outputs {
		if err := r.emit(out); err != nil {
			return stats, err
		}
		stats.Tiles++
		stats.Targets += out.summary.Targets
		stats.Assigned += out.summary.Assigned
		stats.FreeFibers += out.summary.FreeFibers
	}
	r.logger.Info("assignment run finished",
		"run_id", r.runID,
		"tiles", stats.Tiles,
		"assigned", stats.Assigned,
		"free_fibers", stats.FreeFibers,
	)
	return stats, nil
}

// processTile runs one assignment pass. The engine and layout are read-only
// here, so passes on distinct pools can run concurrently.
func (r *Runner) processTile(pool *catalog.TargetPool) tileOutput {
	pool.Project()
	res := r.engine.Run(r.layout, pool)

	now := time.Now().UTC()
	rows := make([]results.AssignmentRow, len(r.layout.Fibers))
	for slot, f := range r.layout.Fibers {
		row := results.AssignmentRow{
			RunID:     r.runID,
			TileID:    pool.Tile.ID,
			FiberID:   f.ID,
			TargetID:  res.FiberTargets[slot],
			X:         f.X,
			Y:         f.Y,
			Distance:  res.Distances[slot],
			Timestamp: now,
		}
		if row.TargetID != assign.NoTarget {
			// Report the claimed target's position, not the fiber rest
			// position.
			for idx := range pool.Targets {
				if pool.Targets[idx].ID == row.TargetID {
					row.X = pool.Targets[idx].X
					row.Y = pool.Targets[idx].Y
					break
				}
			}
		}
		rows[slot] = row
	}

	assigned := res.Assigned()
	return tileOutput{
		pool: pool,
		rows: rows,
		summary: results.TileSummaryRow{
			RunID:      r.runID,
			TileID:     pool.Tile.ID,
			RA:         pool.Tile.RA,
			Dec:        pool.Tile.Dec,
			Targets:    pool.Len(),
			Fibers:     len(r.layout.Fibers),
			Assigned:   assigned,
			FreeFibers: len(r.layout.Fibers) - assigned,
			Timestamp:  now,
		},
	}
}

// emit writes one tile's rows, records observations, and updates the per-tile
// results file.
func (r *Runner) emit(out tileOutput) error {
	if bw, ok := r.writer.(batchWriter); ok {
		if err := bw.WriteBatch(out.rows); err != nil {
			return err
		}
	} else {
		for _, row := range out.rows {
			if err := r.writer.Write(row); err != nil {
				return err
			}
		}
	}
	if err := r.store.Record(out.rows); err != nil {
		return err
	}
	if r.cfg.ResultsDir != "" {
		if err := r.store.WriteTileResults(r.cfg.ResultsDir, out.pool); err != nil {
			return err
		}
	}
	if r.summaryWriter != nil {
		if err := r.summaryWriter.WriteSummary(out.summary); err != nil {
			return err
		}
	}
	return nil
}

// InitResults writes initial per-tile results files for every tile in the
// configured directory: all targets unassigned with zero observations.
func InitResults(cfg *config.SurveyConfig, logger *slog.Logger) error {
	files, err := catalog.ListTileFiles(cfg.TileDir, cfg.TilePattern)
	if err != nil {
		return err
	}
	for _, f := range files {
		pool, err := catalog.LoadTile(f)
		if err != nil {
			return err
		}
		if err := results.InitTileResults(cfg.ResultsDir, pool); err != nil {
			return err
		}
	}
	logger.Info("initialized results files", "tiles", len(files), "dir", cfg.ResultsDir)
	return nil
}
