// Per-fiber reachability of pool targets
package assign

import (
	"sort"

	"fibersim/internal/catalog"
	"fibersim/internal/focalplane"
)

// Availability is a snapshot of which pool targets each fiber can reach.
// Candidates[slot] holds pool indices ordered ascending by planar distance
// from the fiber at that layout slot; ties keep ascending pool order. The
// snapshot is computed before any claims, so one target may appear on many
// fibers' lists.
type Availability struct {
	Candidates [][]int
}

// BuildAvailability computes the reachability snapshot of pool against
// layout. Selection is strict: a target exactly at patrol radius is out of
// reach. Brute force over fibers x targets; the selection set and ordering
// are the contract, not the search strategy.
func BuildAvailability(layout *focalplane.Layout, pool *catalog.TargetPool) *Availability {
	patrol := layout.PatrolRadius()
	av := &Availability{Candidates: make([][]int, len(layout.Fibers))}

	type cand struct {
		idx int
		d   float64
	}
	for slot, f := range layout.Fibers {
		var reach []cand
		for i := range pool.Targets {
			d := f.Distance(pool.Targets[i].X, pool.Targets[i].Y)
			if d < patrol {
				reach = append(reach, cand{idx: i, d: d})
			}
		}
		sort.SliceStable(reach, func(a, b int) bool { return reach[a].d < reach[b].d })
		list := make([]int, len(reach))
		for k, c := range reach {
			list[k] = c.idx
		}
		av.Candidates[slot] = list
	}
	return av
}
