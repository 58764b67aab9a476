package sched

import (
	"container/heap"
	"sync"
)

// reactionHeap is a min-heap of ReactionID ordered by the owning
// reactionTable's precomputed index, ascending (lower index = higher
// priority = earlier deadline). It implements heap.Interface the same way
// eventloop's timerHeap wraps container/heap instead of hand-rolling a
// binary heap: spec.md §4.1 only asks for insert/pop_min/size/free, and
// container/heap already provides exactly that shape over a slice.
type reactionHeap struct {
	ids   []ReactionID
	index []uint64 // shared with reactionTable.index, read-only here
}

func (h reactionHeap) Len() int            { return len(h.ids) }
func (h reactionHeap) Less(i, j int) bool  { return h.index[h.ids[i]] < h.index[h.ids[j]] }
func (h reactionHeap) Swap(i, j int)       { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *reactionHeap) Push(x any)         { h.ids = append(h.ids, x.(ReactionID)) }
func (h *reactionHeap) Pop() any {
	old := h.ids
	n := len(old)
	x := old[n-1]
	h.ids = old[:n-1]
	return x
}

// levelQueue is one precedence level's ready queue: a reactionHeap guarded
// by its own mutex. spec.md §4.1/§5 calls for "one dedicated mutex [per
// level PQ], only held across insert and pop" — PQ itself need not
// deduplicate, since single-admission is already guaranteed by the
// reaction-status CAS (spec.md §4.4).
type levelQueue struct {
	mu sync.Mutex
	h  reactionHeap
}

func newLevelQueue(sharedIndex []uint64) *levelQueue {
	return &levelQueue{h: reactionHeap{index: sharedIndex}}
}

// insert adds id to the queue. Equality/duplicate suppression is
// intentionally absent: the PQ is commutative over same-index reactions
// (spec.md §4.1) and relies on the caller (trigger_reaction) to have
// already won single admission via CAS.
func (q *levelQueue) insert(id ReactionID) {
	q.mu.Lock()
	heap.Push(&q.h, id)
	q.mu.Unlock()
}

// popMin removes and returns the lowest-index reaction, or (InvalidReaction,
// false) if the queue is empty.
func (q *levelQueue) popMin() (ReactionID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.h.Len() == 0 {
		return InvalidReaction, false
	}
	return heap.Pop(&q.h).(ReactionID), true
}

// size returns the current queue depth. Used only by the last-idle worker
// during distribute_ready_reactions/notify_workers, where per spec.md §4.3
// "all workers are idle (hence no locks needed on PQs)" — but we still take
// the mutex here for safety against concurrent late-arriving triggers
// inserting into this same level.
func (q *levelQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len()
}

// free clears the queue's backing storage. Called from Scheduler.Free for
// every level: spec.md §9 flags the source's lf_sched_free as leaking most
// per-level PQs ("weird memory errors" per its comment) and is explicit
// that a correct implementation must free every level, not reproduce that
// defect.
func (q *levelQueue) free() {
	q.mu.Lock()
	q.h.ids = nil
	q.mu.Unlock()
}
