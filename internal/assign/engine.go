// Greedy fiber-target assignment engine
package assign

import (
	"fmt"

	"fibersim/internal/catalog"
	"fibersim/internal/focalplane"
)

// Policy selects how the engine picks a target for each fiber. Both policies
// are greedy, single-pass, and order-dependent over fibers ascending by id;
// they differ in tie-break and in how stale candidates are handled.
type Policy string

const (
	// PolicySnapshot walks a precomputed distance-ordered candidate list
	// and re-checks each entry against live claim state, skipping targets
	// another fiber took earlier in the pass.
	PolicySnapshot Policy = "snapshot"
	// PolicyLive re-scans the live pool per fiber and takes the first
	// reachable unclaimed target in pool (catalog) order.
	PolicyLive Policy = "live"
)

// NoTarget marks a fiber that ends a pass unassigned.
const NoTarget int64 = -1

// Result is the outcome of one assignment pass. FiberTargets is indexed by
// layout slot and holds the claimed target id or NoTarget; TargetFibers is
// indexed by pool position and holds the claiming fiber id or
// catalog.UnassignedFiber. Distances[slot] is the fiber-target planar
// distance for assigned slots, 0 otherwise.
type Result struct {
	TileID       int64
	FiberTargets []int64
	TargetFibers []int64
	Distances    []float64
}

// Assigned counts the fibers that claimed a target.
func (r *Result) Assigned() int {
	n := 0
	for _, t := range r.FiberTargets {
		if t != NoTarget {
			n++
		}
	}
	return n
}

// Engine resolves the many-to-many reachability between fibers and targets
// into a one-to-one (or partial) pairing.
type Engine struct {
	policy Policy
}

// NewEngine validates the policy and returns an engine.
func NewEngine(policy Policy) (*Engine, error) {
	switch policy {
	case PolicySnapshot, PolicyLive:
		return &Engine{policy: policy}, nil
	default:
		return nil, fmt.Errorf("unknown assignment policy %q", policy)
	}
}

// Policy reports the engine's configured policy.
func (e *Engine) Policy() Policy { return e.policy }

// Run executes one assignment pass over pool. The pool's assignment state is
// reset first, then mutated in place as fibers claim targets; the pass is
// synchronous and deterministic. Zero fibers or zero targets yield an empty
// result, never an error.
func (e *Engine) Run(layout *focalplane.Layout, pool *catalog.TargetPool) *Result {
	pool.Reset()
	res := &Result{
		TileID:       pool.Tile.ID,
		FiberTargets: make([]int64, len(layout.Fibers)),
		TargetFibers: make([]int64, pool.Len()),
		Distances:    make([]float64, len(layout.Fibers)),
	}
	for i := range res.FiberTargets {
		res.FiberTargets[i] = NoTarget
	}
	for i := range res.TargetFibers {
		res.TargetFibers[i] = catalog.UnassignedFiber
	}

	switch e.policy {
	case PolicySnapshot:
		e.runSnapshot(layout, pool, res)
	case PolicyLive:
		e.runLive(layout, pool, res)
	}
	return res
}

// runSnapshot iterates fibers ascending by id over a reachability snapshot.
// A candidate already claimed earlier in the pass is skipped, not assigned
// twice; a fiber whose list is exhausted stays unassigned.
func (e *Engine) runSnapshot(layout *focalplane.Layout, pool *catalog.TargetPool, res *Result) {
	av := BuildAvailability(layout, pool)
	for slot := range layout.Fibers {
		for _, idx := range av.Candidates[slot] {
			if pool.Targets[idx].FiberID != catalog.UnassignedFiber {
				continue
			}
			claim(layout, pool, res, slot, idx)
			break
		}
	}
}

// runLive re-evaluates reachability against live claim state per fiber and
// takes the first free reachable target in pool order.
func (e *Engine) runLive(layout *focalplane.Layout, pool *catalog.TargetPool, res *Result) {
	patrol := layout.PatrolRadius()
	for slot, f := range layout.Fibers {
		if idx, ok := liveCandidate(f, patrol, pool); ok {
			claim(layout, pool, res, slot, idx)
		}
	}
}

// liveCandidate finds the first pool target that is unclaimed and strictly
// within patrol reach of f, in pool order.
func liveCandidate(f focalplane.Fiber, patrol float64, pool *catalog.TargetPool) (int, bool) {
	for idx := range pool.Targets {
		t := &pool.Targets[idx]
		if t.FiberID != catalog.UnassignedFiber {
			continue
		}
		if f.Distance(t.X, t.Y) >= patrol {
			continue
		}
		return idx, true
	}
	return 0, false
}

// AssignPositioner claims a target for one fiber against the live pool and
// returns the focal-plane coordinates the positioner should move to: the
// claimed target's position, or the fiber rest position when no unclaimed
// target is in reach.
func AssignPositioner(f focalplane.Fiber, patrol float64, pool *catalog.TargetPool) (x, y float64, claimed bool) {
	idx, ok := liveCandidate(f, patrol, pool)
	if !ok {
		return f.X, f.Y, false
	}
	pool.Targets[idx].FiberID = f.ID
	return pool.Targets[idx].X, pool.Targets[idx].Y, true
}

// claim pairs the fiber at slot with the pool target at idx, updating both
// sides together so pairing symmetry holds at every step.
func claim(layout *focalplane.Layout, pool *catalog.TargetPool, res *Result, slot, idx int) {
	f := layout.Fibers[slot]
	t := &pool.Targets[idx]
	t.FiberID = f.ID
	res.FiberTargets[slot] = t.ID
	res.TargetFibers[idx] = f.ID
	res.Distances[slot] = f.Distance(t.X, t.Y)
}
