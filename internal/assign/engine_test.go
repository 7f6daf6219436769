package assign

import (
	"reflect"
	"testing"

	"fibersim/internal/catalog"
)

func checkPairing(t *testing.T, res *Result, pool *catalog.TargetPool) {
	t.Helper()
	seenTarget := map[int64]int64{}
	for slot, tid := range res.FiberTargets {
		if tid == NoTarget {
			continue
		}
		if prev, ok := seenTarget[tid]; ok {
			t.Fatalf("target %d claimed by fibers %d and %d", tid, prev, slot)
		}
		seenTarget[tid] = int64(slot)
	}
	for idx, fid := range res.TargetFibers {
		if pool.Targets[idx].FiberID != fid {
			t.Errorf("target %d: pool fiber_id %d != result %d",
				pool.Targets[idx].ID, pool.Targets[idx].FiberID, fid)
		}
		if fid == catalog.UnassignedFiber {
			continue
		}
		// Symmetric side: the claiming fiber must point back at this target.
		found := false
		for slot, tid := range res.FiberTargets {
			if tid == pool.Targets[idx].ID && int64(slot) == fid {
				found = true
			}
		}
		if !found {
			t.Errorf("target %d claims fiber %d but fiber does not claim it back",
				pool.Targets[idx].ID, fid)
		}
	}
}

func TestEngine_DisjointReach(t *testing.T) {
	// F0 reaches both targets but T0 is nearer; F1 only reaches T1.
	layout := testLayout([2]float64{0, 0}, [2]float64{8, 0})
	pool := testPool([2]float64{0, 0}, [2]float64{5, 0})

	eng, err := NewEngine(PolicySnapshot)
	if err != nil {
		t.Fatal(err)
	}
	res := eng.Run(layout, pool)

	if res.FiberTargets[0] != 100 {
		t.Errorf("fiber 0 claimed %d, want target 100", res.FiberTargets[0])
	}
	if res.FiberTargets[1] != 101 {
		t.Errorf("fiber 1 claimed %d, want target 101", res.FiberTargets[1])
	}
	checkPairing(t, res, pool)
}

func TestEngine_ConflictStaleness(t *testing.T) {
	// Both fibers list the single target; only the first in processing
	// order may claim it.
	layout := testLayout([2]float64{0, 0}, [2]float64{4, 0})
	pool := testPool([2]float64{2, 0})

	for _, policy := range []Policy{PolicySnapshot, PolicyLive} {
		eng, err := NewEngine(policy)
		if err != nil {
			t.Fatal(err)
		}
		res := eng.Run(layout, pool)

		if res.FiberTargets[0] != 100 {
			t.Errorf("%s: fiber 0 claimed %d, want 100", policy, res.FiberTargets[0])
		}
		if res.FiberTargets[1] != NoTarget {
			t.Errorf("%s: fiber 1 claimed %d, want none", policy, res.FiberTargets[1])
		}
		if pool.Targets[0].FiberID != 0 {
			t.Errorf("%s: target fiber_id = %d, want 0", policy, pool.Targets[0].FiberID)
		}
		checkPairing(t, res, pool)
	}
}

func TestEngine_Unreachable(t *testing.T) {
	layout := testLayout([2]float64{0, 0})
	pool := testPool([2]float64{10, 0})

	eng, _ := NewEngine(PolicySnapshot)
	res := eng.Run(layout, pool)

	if res.FiberTargets[0] != NoTarget {
		t.Errorf("fiber claimed %d, want none", res.FiberTargets[0])
	}
	if pool.Targets[0].FiberID != catalog.UnassignedFiber {
		t.Errorf("target fiber_id = %d, want unassigned", pool.Targets[0].FiberID)
	}
	if res.Assigned() != 0 {
		t.Errorf("Assigned() = %d, want 0", res.Assigned())
	}
}

func TestEngine_EmptyInputs(t *testing.T) {
	eng, _ := NewEngine(PolicySnapshot)

	res := eng.Run(testLayout(), testPool([2]float64{1, 1}))
	if len(res.FiberTargets) != 0 {
		t.Errorf("zero fibers: %v", res.FiberTargets)
	}

	res = eng.Run(testLayout([2]float64{0, 0}), testPool())
	if res.FiberTargets[0] != NoTarget {
		t.Errorf("zero targets: fiber claimed %d", res.FiberTargets[0])
	}
}

func TestEngine_SnapshotFallsThroughStaleEntry(t *testing.T) {
	// F0 and F1 both rank T0 first. F0 takes it; F1 must fall through to
	// its next candidate T1 rather than stay empty-handed.
	layout := testLayout([2]float64{0, 0}, [2]float64{2, 0})
	pool := testPool([2]float64{1, 0}, [2]float64{4, 0})

	eng, _ := NewEngine(PolicySnapshot)
	res := eng.Run(layout, pool)

	if res.FiberTargets[0] != 100 || res.FiberTargets[1] != 101 {
		t.Errorf("assignments = %v, want [100 101]", res.FiberTargets)
	}
	checkPairing(t, res, pool)
}

func TestEngine_PolicyDivergence(t *testing.T) {
	// Pool order lists the farther target first. Snapshot picks the
	// nearest (T1); live picks the first reachable in pool order (T0). The
	// policy switch must be observable.
	layout := testLayout([2]float64{0, 0})
	pool := testPool([2]float64{5, 0}, [2]float64{1, 0})

	snap, _ := NewEngine(PolicySnapshot)
	if res := snap.Run(layout, pool); res.FiberTargets[0] != 101 {
		t.Errorf("snapshot claimed %d, want 101", res.FiberTargets[0])
	}

	live, _ := NewEngine(PolicyLive)
	if res := live.Run(layout, pool); res.FiberTargets[0] != 100 {
		t.Errorf("live claimed %d, want 100", res.FiberTargets[0])
	}
}

func TestEngine_ReachabilityBound(t *testing.T) {
	layout := testLayout(
		[2]float64{0, 0}, [2]float64{5, 0}, [2]float64{0, 5}, [2]float64{5, 5},
	)
	pool := testPool(
		[2]float64{1, 1}, [2]float64{4, 1}, [2]float64{2.5, 2.5},
		[2]float64{4, 4}, [2]float64{20, 20},
	)
	patrol := layout.PatrolRadius()

	for _, policy := range []Policy{PolicySnapshot, PolicyLive} {
		eng, _ := NewEngine(policy)
		res := eng.Run(layout, pool)
		for slot, tid := range res.FiberTargets {
			if tid == NoTarget {
				continue
			}
			if res.Distances[slot] >= patrol {
				t.Errorf("%s: fiber %d at distance %g >= patrol %g",
					policy, slot, res.Distances[slot], patrol)
			}
		}
		checkPairing(t, res, pool)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	layout := testLayout(
		[2]float64{0, 0}, [2]float64{3, 0}, [2]float64{0, 3}, [2]float64{3, 3},
	)
	mk := func() *catalog.TargetPool {
		return testPool(
			[2]float64{1, 0}, [2]float64{1, 1}, [2]float64{2, 2},
			[2]float64{3, 1}, [2]float64{0, 2},
		)
	}
	for _, policy := range []Policy{PolicySnapshot, PolicyLive} {
		eng, _ := NewEngine(policy)
		a := eng.Run(layout, mk())
		b := eng.Run(layout, mk())
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: repeated runs differ:\n%+v\n%+v", policy, a, b)
		}
	}
}

func TestNewEngine_RejectsUnknownPolicy(t *testing.T) {
	if _, err := NewEngine(Policy("optimal")); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestAssignPositioner(t *testing.T) {
	layout := testLayout([2]float64{0, 0})
	pool := testPool([2]float64{2, 0}, [2]float64{1, 0})
	patrol := layout.PatrolRadius()

	f := layout.Fibers[0]
	x, y, claimed := AssignPositioner(f, patrol, pool)
	if !claimed {
		t.Fatal("expected a claim")
	}
	if x != 2 || y != 0 {
		t.Errorf("moved to (%g, %g), want first pool target (2, 0)", x, y)
	}
	if pool.Targets[0].FiberID != f.ID {
		t.Errorf("pool target not claimed by fiber %d", f.ID)
	}

	// Second fiber at the same spot must skip the claimed target.
	x, y, claimed = AssignPositioner(f, patrol, pool)
	if !claimed || x != 1 || y != 0 {
		t.Errorf("second call got (%g, %g, %v), want (1, 0, true)", x, y, claimed)
	}

	// Exhausted pool returns the rest position.
	x, y, claimed = AssignPositioner(f, patrol, pool)
	if claimed {
		t.Error("expected no claim on exhausted pool")
	}
	if x != f.X || y != f.Y {
		t.Errorf("rest position (%g, %g), want (%g, %g)", x, y, f.X, f.Y)
	}
}
