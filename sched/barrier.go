package sched

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// idleBarrier implements spec.md §4.3/§5's worker-idle synchronization
// protocol: a count of idle workers, and a semaphore used to park workers
// that found no work and are not the one elected to drive level/tag
// advance.
//
// golang.org/x/sync/semaphore.Weighted is used instead of a hand-rolled
// channel-based counter because spec.md's protocol is specified directly in
// terms of semaphore acquire/"release N times" operations (notify_workers,
// signal_stop) — Weighted is the idiomatic Go embodiment of exactly that
// primitive, with ctx-aware blocking acquire.
type idleBarrier struct {
	numWorkers  int32
	idleWorkers atomic.Int32
	shouldStop  atomic.Bool
	sem         *semaphore.Weighted
}

func newIdleBarrier(numWorkers int) *idleBarrier {
	sem := semaphore.NewWeighted(int64(numWorkers))
	// Weighted starts with its full capacity available to Acquire, which is
	// backwards for a park/wake gate: nobody should be able to proceed
	// until notifyWorkers/signalStop explicitly releases a permit. Drain it
	// once up front, before any worker exists, so this never races with a
	// worker.
	_ = sem.Acquire(context.Background(), int64(numWorkers))
	return &idleBarrier{
		numWorkers: int32(numWorkers),
		sem:        sem,
	}
}

// reportIdle atomically increments the idle-worker count and reports
// whether the caller is the last worker to go idle (the one that must
// drive try_advance_tag_and_distribute).
func (b *idleBarrier) reportIdle() (lastIdle bool) {
	return b.idleWorkers.Add(1) == b.numWorkers
}

// park blocks the calling worker on the semaphore until woken by
// notifyWorkers or signalStop. ctx is only used to make the block
// cancellable by the host; the scheduler itself never cancels it.
func (b *idleBarrier) park(ctx context.Context) error {
	return b.sem.Acquire(ctx, 1)
}

// notifyWorkers implements spec.md §4.3's notify_workers: wake up to
// executingSize idle workers (but never more than are actually idle), one
// of which is the caller itself and needs no semaphore release.
func (b *idleBarrier) notifyWorkers(executingSize int) {
	idle := b.idleWorkers.Load()
	n := int32(executingSize)
	if idle < n {
		n = idle
	}
	if n <= 0 {
		return
	}
	b.idleWorkers.Add(-n)
	if n > 1 {
		b.sem.Release(int64(n - 1))
	}
}

// signalStop implements spec.md §4.3's signal_stop: set the stop flag and
// wake every other worker so each observes it on its next loop iteration.
func (b *idleBarrier) signalStop() {
	b.shouldStop.Store(true)
	if n := b.numWorkers - 1; n > 0 {
		b.sem.Release(int64(n))
	}
}

func (b *idleBarrier) stopped() bool {
	return b.shouldStop.Load()
}
