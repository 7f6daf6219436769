// Survey-wide observation bookkeeping
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fibersim/internal/catalog"
)

// ErrUnknownTarget reports a tile target id that does not exist in the
// survey-wide catalog. It indicates catalog corruption or a mismatch between
// a tile's local id space and the survey id space; callers must abort, not
// retry.
var ErrUnknownTarget = errors.New("target id not in survey catalog")

// ObservationRecord is one target's entry in a per-tile results file.
type ObservationRecord struct {
	TargetID int64 `json:"targetid"`
	FiberID  int64 `json:"fiber"`
	NumObs   int64 `json:"numobs"`
}

// resultsFile is the on-disk per-tile results format.
type resultsFile struct {
	TileID  int64               `json:"tile_id"`
	Records []ObservationRecord `json:"records"`
}

// ObservationStore accumulates per-target observation counts across repeated
// tile visits. It is the single-writer aggregation point of a survey run:
// tile passes may execute concurrently, but every Record call serializes
// here.
type ObservationStore struct {
	mu     sync.Mutex
	counts map[int64]int64
}

// NewObservationStore returns an empty store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{counts: make(map[int64]int64)}
}

// AddTargets registers target ids in the survey catalog with zero
// observations. Already-known ids keep their counts.
func (s *ObservationStore) AddTargets(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.counts[id]; !ok {
			s.counts[id] = 0
		}
	}
}

// Record increments the observation count of every assigned target in rows.
// Unassigned rows (TargetID < 0) are skipped. A target id missing from the
// store aborts with ErrUnknownTarget.
func (s *ObservationStore) Record(rows []AssignmentRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		if r.TargetID < 0 {
			continue
		}
		if _, ok := s.counts[r.TargetID]; !ok {
			return fmt.Errorf("tile %d: target %d: %w", r.TileID, r.TargetID, ErrUnknownTarget)
		}
		s.counts[r.TargetID]++
	}
	return nil
}

// Count returns a target's observation count.
func (s *ObservationStore) Count(id int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.counts[id]
	return n, ok
}

// Len is the number of targets in the survey catalog.
func (s *ObservationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

// resultsPath names the per-tile results file inside dir.
func resultsPath(dir string, tileID int64) string {
	return filepath.Join(dir, fmt.Sprintf("results_%05d.json", tileID))
}

// InitTileResults writes a tile's initial results file: every target
// unassigned with zero observations.
func InitTileResults(dir string, pool *catalog.TargetPool) error {
	rf := resultsFile{
		TileID:  pool.Tile.ID,
		Records: make([]ObservationRecord, 0, len(pool.Targets)),
	}
	for _, t := range pool.Targets {
		rf.Records = append(rf.Records, ObservationRecord{
			TargetID: t.ID,
			FiberID:  catalog.UnassignedFiber,
		})
	}
	return writeResultsFile(resultsPath(dir, pool.Tile.ID), rf)
}

// WriteTileResults writes a tile's results file from the pool's post-pass
// assignment state, carrying the store's current observation counts. Every
// pool target must already be registered in the store.
func (s *ObservationStore) WriteTileResults(dir string, pool *catalog.TargetPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rf := resultsFile{
		TileID:  pool.Tile.ID,
		Records: make([]ObservationRecord, 0, len(pool.Targets)),
	}
	for _, t := range pool.Targets {
		n, ok := s.counts[t.ID]
		if !ok {
			return fmt.Errorf("tile %d: target %d: %w", pool.Tile.ID, t.ID, ErrUnknownTarget)
		}
		rf.Records = append(rf.Records, ObservationRecord{
			TargetID: t.ID,
			FiberID:  t.FiberID,
			NumObs:   n,
		})
	}
	return writeResultsFile(resultsPath(dir, pool.Tile.ID), rf)
}

func writeResultsFile(path string, rf resultsFile) error {
	b, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
