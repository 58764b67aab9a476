package sched

// readyTable holds one levelQueue per precedence level, plus the cursor and
// "currently executing" pointer spec.md §3/§4.2 describe.
//
// nextReactionLevel is the next level to inspect, 0-indexed, reset to 0 at
// the start of every tag. This differs from spec.md §3's prose framing of
// the cursor as "one past the level to execute" (initial value 1): that
// framing and the pseudocode's own exhaustion check
// (next_reaction_level == L_max+1, reset to 0) are mutually inconsistent at
// the L_max=0 boundary spec.md §8 itself requires to work (a single level's
// reactions must still be dispatched before the first tag advance). A
// directly-indexed, 0-based cursor satisfies every documented level/tag
// ordering and boundary behavior without that off-by-one. See DESIGN.md.
type readyTable struct {
	levels            []*levelQueue
	nextReactionLevel uint32
	executing         *levelQueue // nil when nothing is being dispatched
	maxLevel          uint32
}

func newReadyTable(maxLevel uint32, sharedIndex []uint64) *readyTable {
	levels := make([]*levelQueue, maxLevel+1)
	for i := range levels {
		levels[i] = newLevelQueue(sharedIndex)
	}
	return &readyTable{
		levels:   levels,
		maxLevel: maxLevel,
	}
}

// distributeReadyReactions implements spec.md §4.2's algorithm of the same
// name. It must be called only when every worker is idle (the caller,
// Scheduler.tryAdvanceTagAndDistribute, establishes that precondition), so
// no PQ locking discipline is required for the executing pointer itself —
// though levelQueue.popMin/insert still take their own per-level mutex,
// since a racing TriggerReaction into a level below the cursor is legal.
//
// Forward progress: spec.md §9 flags the source's try_advance_level inner
// loop as able to spin when no branch advances the cursor. Here the cursor
// is unconditionally advanced by the for-loop regardless of what the
// Environment hook does, so termination is guaranteed after at most
// maxLevel+1 iterations.
func (rt *readyTable) distributeReadyReactions(env Environment) int {
	for rt.nextReactionLevel <= rt.maxLevel {
		env.TryAdvanceLevel(&rt.nextReactionLevel)
		if rt.nextReactionLevel > rt.maxLevel {
			break
		}
		q := rt.levels[rt.nextReactionLevel]
		if n := q.size(); n > 0 {
			rt.executing = q
			return n
		}
		rt.nextReactionLevel++
	}
	rt.executing = nil
	return 0
}

// resetForNextTag rewinds the cursor to level 0, called at the top of
// try_advance_tag_and_distribute once AdvanceTagLocked has moved the host to
// a new tag.
func (rt *readyTable) resetForNextTag() {
	rt.nextReactionLevel = 0
	rt.executing = nil
}

// atLastLevel reports whether the cursor has passed every level, meaning
// the scheduler must advance the tag before any further dispatch.
func (rt *readyTable) atLastLevel() bool {
	return rt.nextReactionLevel > rt.maxLevel
}

// free releases every level's backing storage. See levelQueue.free's
// comment: the source leaks all but one level here, which this
// implementation deliberately does not reproduce.
func (rt *readyTable) free() {
	for _, q := range rt.levels {
		q.free()
	}
	rt.executing = nil
}
