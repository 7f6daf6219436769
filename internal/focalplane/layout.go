// Focal-plane fiber layout and neighbor geometry
package focalplane

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// NeighborCount is the number of nearest neighboring fibers recorded per
// fiber.
const NeighborCount = 6

// Fiber is one actuated optical fiber on the focal plane. X, Y, Z are the
// positioner's fixed focal-plane coordinates in mm.
type Fiber struct {
	ID             int64   `json:"fiber"`
	PositionerID   int64   `json:"positioner"`
	SpectrographID int64   `json:"spectrograph"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Z              float64 `json:"z"`
}

// Layout is the immutable geometric description of all fibers on the focal
// plane. Fibers are held in ascending fiber-id order, so slot order is also
// the engine's processing order. Neighbors[i] holds the slots of the
// NeighborCount fibers nearest to slot i, ascending by planar distance, self
// excluded; it is auxiliary structure and not consulted by assignment.
type Layout struct {
	Fibers     []Fiber
	Neighbors  [][]int
	Positioner PositionerConfig
}

// Build constructs a Layout from a fiber list and positioner geometry. The
// input slice is not retained.
func Build(fibers []Fiber, pc PositionerConfig) *Layout {
	fs := make([]Fiber, len(fibers))
	copy(fs, fibers)
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].ID < fs[j].ID })

	l := &Layout{
		Fibers:     fs,
		Neighbors:  make([][]int, len(fs)),
		Positioner: pc,
	}
	for i := range fs {
		l.Neighbors[i] = nearestSlots(fs, i)
	}
	return l
}

// PatrolRadius is the reach shared by every positioner in the layout.
func (l *Layout) PatrolRadius() float64 {
	return l.Positioner.PatrolRadius()
}

// Slot returns the slot index of a fiber id, or false if the id is unknown.
func (l *Layout) Slot(fiberID int64) (int, bool) {
	i := sort.Search(len(l.Fibers), func(i int) bool { return l.Fibers[i].ID >= fiberID })
	if i < len(l.Fibers) && l.Fibers[i].ID == fiberID {
		return i, true
	}
	return 0, false
}

// nearestSlots returns the slots of the fibers nearest to slot i by planar
// distance, ascending, self excluded. Ties keep ascending slot order.
func nearestSlots(fs []Fiber, i int) []int {
	type cand struct {
		slot int
		d2   float64
	}
	cands := make([]cand, 0, len(fs)-1)
	for j := range fs {
		if j == i {
			continue
		}
		dx := fs[j].X - fs[i].X
		dy := fs[j].Y - fs[i].Y
		cands = append(cands, cand{slot: j, d2: dx*dx + dy*dy})
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].d2 < cands[b].d2 })

	n := NeighborCount
	if n > len(cands) {
		n = len(cands)
	}
	out := make([]int, n)
	for k := 0; k < n; k++ {
		out[k] = cands[k].slot
	}
	return out
}

// layoutFile is the on-disk fiber catalog format.
type layoutFile struct {
	Fibers []Fiber `json:"fibers"`
}

// LoadCatalog reads a fiber catalog file and returns its fibers.
func LoadCatalog(path string) ([]Fiber, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fiber catalog: %w", err)
	}
	var f layoutFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse fiber catalog %s: %w", path, err)
	}
	return f.Fibers, nil
}

// SaveCatalog writes a fiber catalog file.
func SaveCatalog(path string, fibers []Fiber) error {
	b, err := json.MarshalIndent(layoutFile{Fibers: fibers}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Distance is the planar distance between a fiber and a point on the focal
// plane.
func (f Fiber) Distance(x, y float64) float64 {
	return math.Hypot(x-f.X, y-f.Y)
}
