package survey

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"fibersim/internal/assign"
	"fibersim/internal/catalog"
	"fibersim/internal/config"
	"fibersim/internal/focalplane"
	"fibersim/internal/logging"
	"fibersim/internal/results"
)

// mockWriter collects assignment rows and summaries for validation.
type mockWriter struct {
	rows      []results.AssignmentRow
	summaries []results.TileSummaryRow
}

func (w *mockWriter) Write(r results.AssignmentRow) error {
	w.rows = append(w.rows, r)
	return nil
}

func (w *mockWriter) WriteSummary(s results.TileSummaryRow) error {
	w.summaries = append(w.summaries, s)
	return nil
}

type testLogSink struct{ t *testing.T }

func (s testLogSink) Write(p []byte) (int, error) {
	s.t.Log(string(p))
	return len(p), nil
}

// testSetup writes a fiber catalog and two tile files and returns a config
// pointing at them. Both tiles contain target 100 at their pointing center,
// so it is revisited across tiles.
func testSetup(t *testing.T) *config.SurveyConfig {
	t.Helper()
	dir := t.TempDir()

	fibers := []focalplane.Fiber{
		{ID: 0, PositionerID: 0, X: 0, Y: 0},
		{ID: 1, PositionerID: 1, X: 8, Y: 0},
	}
	fiberPath := filepath.Join(dir, "fibers.json")
	if err := focalplane.SaveCatalog(fiberPath, fibers); err != nil {
		t.Fatal(err)
	}

	tiles := []struct {
		tile    catalog.Tile
		targets []catalog.Target
	}{
		{
			tile: catalog.Tile{ID: 1, RA: 150, Dec: 2},
			targets: []catalog.Target{
				{ID: 100, RA: 150, Dec: 2, Type: "ELG"},
			},
		},
		{
			tile: catalog.Tile{ID: 2, RA: 150, Dec: 2},
			targets: []catalog.Target{
				{ID: 100, RA: 150, Dec: 2, Type: "ELG"},
				{ID: 101, RA: 150.02, Dec: 2, Type: "QSO"},
			},
		},
	}
	for _, tf := range tiles {
		path := filepath.Join(dir, fmt.Sprintf("tile_%05d.json", tf.tile.ID))
		if err := catalog.SaveTile(path, tf.tile, tf.targets); err != nil {
			t.Fatal(err)
		}
	}

	return &config.SurveyConfig{
		TileDir:          dir,
		TilePattern:      "tile_*.json",
		FiberCatalog:     fiberPath,
		ResultsDir:       dir,
		AssignmentPolicy: "snapshot",
		Workers:          2,
		Positioner:       focalplane.DefaultPositioner(),
	}
}

func newTestRunner(t *testing.T, cfg *config.SurveyConfig, w *mockWriter) (*Runner, *results.ObservationStore) {
	t.Helper()
	fibers, err := focalplane.LoadCatalog(cfg.FiberCatalog)
	if err != nil {
		t.Fatal(err)
	}
	layout := focalplane.Build(fibers, cfg.Positioner)
	engine, err := assign.NewEngine(assign.Policy(cfg.AssignmentPolicy))
	if err != nil {
		t.Fatal(err)
	}
	store := results.NewObservationStore()
	logger := logging.NewWithWriter(testLogSink{t}, false)
	return NewRunner("run-test", cfg, layout, engine, w, w, store, logger), store
}

func TestRunner_EndToEnd(t *testing.T) {
	cfg := testSetup(t)
	w := &mockWriter{}
	runner, store := newTestRunner(t, cfg, w)

	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Tiles != 2 {
		t.Fatalf("stats.Tiles = %d, want 2", stats.Tiles)
	}

	// One row per fiber per tile, emitted ascending by tile id.
	if len(w.rows) != 4 {
		t.Fatalf("wrote %d rows, want 4", len(w.rows))
	}
	if w.rows[0].TileID != 1 || w.rows[2].TileID != 2 {
		t.Errorf("rows not ordered by tile id: %d, %d", w.rows[0].TileID, w.rows[2].TileID)
	}
	for _, row := range w.rows {
		if row.RunID != "run-test" {
			t.Errorf("row missing run id: %+v", row)
		}
	}
	if len(w.summaries) != 2 {
		t.Fatalf("wrote %d summaries, want 2", len(w.summaries))
	}

	// Target 100 sits at both tile centers; fiber 0 claims it on each
	// visit, so it accumulates two observations.
	if n, ok := store.Count(100); !ok || n != 2 {
		t.Errorf("target 100 observed %d times, want 2", n)
	}
	if w.rows[0].TargetID != 100 {
		t.Errorf("tile 1 fiber 0 claimed %d, want 100", w.rows[0].TargetID)
	}

	// Per-tile results files exist and carry the counts.
	b, err := os.ReadFile(filepath.Join(cfg.ResultsDir, "results_00002.json"))
	if err != nil {
		t.Fatalf("results file: %v", err)
	}
	var rf struct {
		TileID  int64 `json:"tile_id"`
		Records []struct {
			TargetID int64 `json:"targetid"`
			NumObs   int64 `json:"numobs"`
		} `json:"records"`
	}
	if err := json.Unmarshal(b, &rf); err != nil {
		t.Fatal(err)
	}
	if rf.TileID != 2 || len(rf.Records) != 2 {
		t.Fatalf("results file = %+v", rf)
	}
}

func stripTimestamps(rows []results.AssignmentRow) []results.AssignmentRow {
	out := make([]results.AssignmentRow, len(rows))
	copy(out, rows)
	for i := range out {
		out[i].Timestamp = time.Time{}
	}
	return out
}

func TestRunner_Deterministic(t *testing.T) {
	cfg := testSetup(t)

	run := func() []results.AssignmentRow {
		w := &mockWriter{}
		runner, _ := newTestRunner(t, cfg, w)
		if _, err := runner.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return stripTimestamps(w.rows)
	}
	a := run()
	b := run()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated runs differ:\n%+v\n%+v", a, b)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	cfg := testSetup(t)
	w := &mockWriter{}
	runner, _ := newTestRunner(t, cfg, w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Run(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRunner_EmptyTileDir(t *testing.T) {
	cfg := testSetup(t)
	cfg.TilePattern = "nothing_*.json"
	w := &mockWriter{}
	runner, _ := newTestRunner(t, cfg, w)

	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run over empty dir: %v", err)
	}
	if stats.Tiles != 0 || len(w.rows) != 0 {
		t.Errorf("empty dir produced stats %+v, rows %d", stats, len(w.rows))
	}
}

func TestInitResults(t *testing.T) {
	cfg := testSetup(t)
	logger := logging.NewWithWriter(testLogSink{t}, false)
	if err := InitResults(cfg, logger); err != nil {
		t.Fatalf("InitResults: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(cfg.ResultsDir, "results_00001.json"))
	if err != nil {
		t.Fatalf("initial results file: %v", err)
	}
	var rf struct {
		Records []struct {
			FiberID int64 `json:"fiber"`
			NumObs  int64 `json:"numobs"`
		} `json:"records"`
	}
	if err := json.Unmarshal(b, &rf); err != nil {
		t.Fatal(err)
	}
	if len(rf.Records) != 1 {
		t.Fatalf("records = %+v", rf.Records)
	}
	if rf.Records[0].FiberID != catalog.UnassignedFiber || rf.Records[0].NumObs != 0 {
		t.Errorf("initial record = %+v, want unassigned with zero obs", rf.Records[0])
	}
}
