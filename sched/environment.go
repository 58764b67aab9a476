package sched

// Environment is the host-runtime collaborator the scheduler calls into to
// advance logical time. It corresponds to spec.md §6's "hooks required from
// the host runtime": the event queue, the logical clock, and the mutex
// guarding tag advancement are all the host's responsibility, not the
// scheduler's.
//
// Lock/Unlock guard advance_tag_locked's critical section. Per spec.md §5,
// this mutex is "acquired strictly inside the scheduler-only critical path
// around advance_tag_locked; it is never held across user reaction code",
// and the lock-ordering rule is: the level PQ mutex is never held while
// contending for this one.
type Environment interface {
	// Lock acquires the environment mutex, held only across AdvanceTagLocked.
	Lock()
	// Unlock releases the environment mutex.
	Unlock()

	// TryAdvanceLevel is called with cursor pointing at the level the
	// scheduler is about to inspect next (0-based; see readytable.go's
	// doc comment for why this implementation uses a directly-indexed
	// cursor rather than spec.md §3's "one past" framing). The host may
	// advance *cursor further (e.g. to skip levels it externally knows
	// are empty at this tag), but is not required to. The scheduler
	// guarantees forward progress itself regardless of what this hook
	// does (spec.md §9 flags the source's version of this loop as capable
	// of spinning when no branch advances the cursor; this implementation
	// always advances by at least one level per iteration of
	// distributeReadyReactions).
	TryAdvanceLevel(cursor *uint32)

	// AdvanceTagLocked is called with the environment mutex held, and must
	// move the host's logical clock/event queue forward to the next tag.
	// It returns true iff the stop-tag has been reached, meaning no further
	// tags will ever be produced.
	AdvanceTagLocked() (stop bool)
}
