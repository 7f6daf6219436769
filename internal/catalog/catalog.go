// Target catalogs and per-tile target pools
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fibersim/internal/projection"
)

// UnassignedFiber marks a target no fiber has claimed.
const UnassignedFiber int64 = -1

// Tile identifies one telescope pointing.
type Tile struct {
	ID  int64   `json:"tile_id"`
	RA  float64 `json:"tile_ra"`
	Dec float64 `json:"tile_dec"`
}

// Target is one candidate object in a tile's pool. RA and Dec are degrees;
// X and Y are the projected focal-plane coordinates in mm, valid after
// Project. FiberID is UnassignedFiber until a fiber claims the target.
type Target struct {
	ID      int64   `json:"targetid"`
	RA      float64 `json:"ra"`
	Dec     float64 `json:"dec"`
	Type    string  `json:"objtype"`
	X       float64 `json:"-"`
	Y       float64 `json:"-"`
	FiberID int64   `json:"-"`
}

// TargetPool is the mutable per-tile collection of targets. Assignment state
// lives here for exactly one pass; nothing carries over between tiles.
type TargetPool struct {
	Tile    Tile
	Targets []Target
}

// NewPool builds a pool for a tile. The target slice is not retained.
func NewPool(tile Tile, targets []Target) *TargetPool {
	ts := make([]Target, len(targets))
	copy(ts, targets)
	p := &TargetPool{Tile: tile, Targets: ts}
	p.Reset()
	return p
}

// Reset clears all assignment state.
func (p *TargetPool) Reset() {
	for i := range p.Targets {
		p.Targets[i].FiberID = UnassignedFiber
	}
}

// Project fills each target's focal-plane position relative to the pool's
// tile center.
func (p *TargetPool) Project() {
	for i := range p.Targets {
		t := &p.Targets[i]
		t.X, t.Y = projection.RadecToXY(t.RA, t.Dec, p.Tile.RA, p.Tile.Dec)
	}
}

// Len is the number of targets in the pool.
func (p *TargetPool) Len() int { return len(p.Targets) }

// tileFile is the on-disk tile catalog format: header fields plus one record
// per target.
type tileFile struct {
	Tile
	Targets []Target `json:"targets"`
}

// LoadTile reads a tile catalog file into a fresh pool.
func LoadTile(path string) (*TargetPool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tile catalog: %w", err)
	}
	var f tileFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse tile catalog %s: %w", path, err)
	}
	return NewPool(f.Tile, f.Targets), nil
}

// SaveTile writes a tile catalog file.
func SaveTile(path string, tile Tile, targets []Target) error {
	b, err := json.MarshalIndent(tileFile{Tile: tile, Targets: targets}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ListTileFiles returns the tile catalog files in dir matching pattern
// (shell glob, e.g. "tile_*.json"), sorted by name.
func ListTileFiles(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("scan tile directory: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}
