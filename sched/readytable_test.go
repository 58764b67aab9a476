package sched

import "testing"

// noopEnv is a minimal Environment whose TryAdvanceLevel never adjusts the
// cursor and whose AdvanceTagLocked never reports stop; used by readyTable
// tests that don't exercise tag advance.
type noopEnv struct{}

func (noopEnv) Lock()                   {}
func (noopEnv) Unlock()                 {}
func (noopEnv) TryAdvanceLevel(*uint32) {}
func (noopEnv) AdvanceTagLocked() bool  { return false }

func TestReadyTableDistributeSkipsEmptyLevels(t *testing.T) {
	descs := []Descriptor{
		{Level: 0}, // id 0, level 0 (will stay empty)
		{Level: 2}, // id 1, level 2
	}
	rt := newReactionTable(descs)
	table := newReadyTable(rt.maxLvl, rt.index)
	table.levels[2].insert(1)

	n := table.distributeReadyReactions(noopEnv{})
	if n != 1 {
		t.Fatalf("distributeReadyReactions = %d, want 1", n)
	}
	if table.nextReactionLevel != 2 {
		t.Fatalf("nextReactionLevel = %d, want 2 (cursor resting on level 2)", table.nextReactionLevel)
	}
	if table.executing != table.levels[2] {
		t.Fatal("executing should point at level 2's queue")
	}
}

func TestReadyTableDistributeReturnsZeroWhenExhausted(t *testing.T) {
	descs := []Descriptor{{Level: 0}, {Level: 1}}
	rt := newReactionTable(descs)
	table := newReadyTable(rt.maxLvl, rt.index)

	n := table.distributeReadyReactions(noopEnv{})
	if n != 0 {
		t.Fatalf("distributeReadyReactions = %d, want 0 for an all-empty table", n)
	}
	if table.executing != nil {
		t.Fatal("executing should be nil once every level is exhausted")
	}
	if !table.atLastLevel() {
		t.Fatal("atLastLevel should report true once the cursor has passed L_max")
	}
}

func TestReadyTableResetForNextTag(t *testing.T) {
	descs := []Descriptor{{Level: 0}}
	rt := newReactionTable(descs)
	table := newReadyTable(rt.maxLvl, rt.index)
	table.nextReactionLevel = 5
	table.executing = table.levels[0]

	table.resetForNextTag()

	if table.nextReactionLevel != 0 {
		t.Fatalf("nextReactionLevel = %d, want 0", table.nextReactionLevel)
	}
	if table.executing != nil {
		t.Fatal("executing should be cleared on reset")
	}
}

// advancingEnv exercises the host hook actually moving the cursor forward,
// confirming distributeReadyReactions still terminates and lands on the
// right level.
type advancingEnv struct{ skipTo uint32 }

func (e advancingEnv) Lock()           {}
func (e advancingEnv) Unlock()         {}
func (e advancingEnv) AdvanceTagLocked() bool { return false }
func (e advancingEnv) TryAdvanceLevel(cursor *uint32) {
	if *cursor < e.skipTo {
		*cursor = e.skipTo
	}
}

func TestReadyTableDistributeHonorsHostSkip(t *testing.T) {
	descs := []Descriptor{{Level: 0}, {Level: 1}, {Level: 2}}
	rt := newReactionTable(descs)
	table := newReadyTable(rt.maxLvl, rt.index)
	table.levels[2].insert(2)

	n := table.distributeReadyReactions(advancingEnv{skipTo: 2})
	if n != 1 {
		t.Fatalf("distributeReadyReactions = %d, want 1", n)
	}
	if table.executing != table.levels[2] {
		t.Fatal("executing should point at level 2 after the host skip")
	}
}

func TestReadyTableDistributeSurvivesOvershootingHost(t *testing.T) {
	descs := []Descriptor{{Level: 0}}
	rt := newReactionTable(descs)
	table := newReadyTable(rt.maxLvl, rt.index)

	// A host hook that always overshoots past maxLevel must not cause an
	// out-of-range slice index.
	n := table.distributeReadyReactions(advancingEnv{skipTo: 99})
	if n != 0 {
		t.Fatalf("distributeReadyReactions = %d, want 0", n)
	}
}

func TestReadyTableFree(t *testing.T) {
	descs := []Descriptor{{Level: 0}, {Level: 1}}
	rt := newReactionTable(descs)
	table := newReadyTable(rt.maxLvl, rt.index)
	table.levels[0].insert(0)
	table.levels[1].insert(1)

	table.free()

	for i, q := range table.levels {
		if q.size() != 0 {
			t.Fatalf("level %d not freed: size = %d", i, q.size())
		}
	}
}
