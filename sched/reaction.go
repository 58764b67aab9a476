package sched

import (
	"sync/atomic"
)

// ReactionID is an opaque, arena-style reference to a registered reaction.
// Identity is the integer itself: reactions are registered once, for the
// lifetime of the scheduler, and referenced thereafter by this stable index
// rather than by a pointer or interface value. This follows spec.md §9's
// guidance to avoid the source's raw function pointers / void* back
// references in favor of a small capability set plus arena ownership: the
// Scheduler owns the status/index tables, ReactionID is a non-owning
// reference into them.
type ReactionID int32

// InvalidReaction is returned alongside an error from operations that
// cannot produce a valid ReactionID.
const InvalidReaction ReactionID = -1

// ReactionStatus is the single-fire-per-tag state of a reaction. It is
// mutated only via atomic compare-and-swap, never under a mutex: spec.md §9
// is explicit that the CAS is what resolves the multi-triggerer race
// without serializing all triggers through a lock.
type ReactionStatus uint32

const (
	// StatusInactive means the reaction is not currently scheduled. It is
	// eligible to be triggered.
	StatusInactive ReactionStatus = iota
	// StatusQueued means a trigger won the admission race and inserted the
	// reaction into a level's ready queue. It keeps this status for the
	// rest of its life cycle at the current tag: spec.md §4.4 CASes
	// directly from queued to inactive in done_with_reaction (there is no
	// separate atomic "running" transition), and §8 property 2 requires
	// r.status == queued at the moment get_ready_reaction hands it to a
	// worker. "Running" in §3's prose names the phase between pop and
	// done_with_reaction, not a fourth CAS-guarded value.
	StatusQueued
)

func (s ReactionStatus) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusQueued:
		return "queued"
	default:
		return "unknown"
	}
}

// Descriptor is the static metadata supplied for each reaction at
// registration time, through Init's Params.Reactions (see scheduler.go).
type Descriptor struct {
	// Level is the reaction's precedence level, 0-based. All of a
	// reaction's logical predecessors have a strictly smaller level.
	Level uint32
	// Deadline is the lower-bits tiebreaker used to order reactions within
	// a level (earliest-deadline-first). Ties are broken arbitrarily by the
	// underlying heap, which does not preserve insertion order.
	Deadline uint32
	// Name is used only for debugging/log output.
	Name string
}

// index packs Level into the upper 32 bits and Deadline into the lower 32,
// matching spec.md §3/§4.1's "upper bits = precedence level, lower bits =
// deadline tiebreaker" 64-bit key, so ascending numeric order is exactly
// level-major, deadline-minor order.
func (d Descriptor) index() uint64 {
	return uint64(d.Level)<<32 | uint64(d.Deadline)
}

// reactionTable owns the per-reaction status and precomputed index arrays.
// It is built once by Init and never resized: the reaction population is
// bounded and registered up front (spec.md §3, "a reaction exists for the
// entire program run; only its status transitions").
type reactionTable struct {
	index  []uint64
	status []atomic.Uint32
	name   []string
	maxLvl uint32
}

func newReactionTable(descs []Descriptor) *reactionTable {
	t := &reactionTable{
		index:  make([]uint64, len(descs)),
		status: make([]atomic.Uint32, len(descs)),
		name:   make([]string, len(descs)),
	}
	for i, d := range descs {
		t.index[i] = d.index()
		t.name[i] = d.Name
		if d.Level > t.maxLvl {
			t.maxLvl = d.Level
		}
	}
	return t
}

func (t *reactionTable) valid(id ReactionID) bool {
	return id >= 0 && int(id) < len(t.index)
}

func (t *reactionTable) level(id ReactionID) uint32 {
	return uint32(t.index[id] >> 32)
}

// tryTrigger performs the inactive -> queued admission CAS. Success means
// this call won the race to schedule id for the current tag; failure means
// another triggerer already admitted it (spec.md §4.4: "silent no-op").
func (t *reactionTable) tryTrigger(id ReactionID) bool {
	return t.status[id].CompareAndSwap(uint32(StatusInactive), uint32(StatusQueued))
}

// tryDone performs the queued -> inactive completion CAS. Per spec.md §4.4,
// failure here (the observed state is not queued) is a fatal contract
// violation, not a race to tolerate.
func (t *reactionTable) tryDone(id ReactionID) (ok bool, got ReactionStatus) {
	if t.status[id].CompareAndSwap(uint32(StatusQueued), uint32(StatusInactive)) {
		return true, StatusInactive
	}
	return false, ReactionStatus(t.status[id].Load())
}

func (t *reactionTable) statusOf(id ReactionID) ReactionStatus {
	return ReactionStatus(t.status[id].Load())
}
