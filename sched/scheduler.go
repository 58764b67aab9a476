package sched

import (
	"context"
	"sync"
	"sync/atomic"
)

// Params bundles the per-level reaction layout supplied to Init. Mirrors
// spec.md §6's "num_reactions_per_level[]" parameter.
type Params struct {
	// Reactions describes every reaction known to this scheduler, in
	// registration order; its index in this slice is its ReactionID.
	Reactions []Descriptor
}

// Scheduler is the GEDF-NP reaction scheduler: the public API surface of
// spec.md §2's Scheduler Core component, wired to the Ready Table, Idle
// Barrier and Reaction Status FSM components beneath it.
//
// A Scheduler is created with New and must be started with Init before any
// worker calls GetReadyReaction; it is the Environment implementation's
// responsibility to supply the event-queue/clock collaboration described in
// environment.go.
type Scheduler struct {
	opts options

	mu          sync.Mutex // serializes Init/Free against each other, not the hot path
	initialized atomic.Bool
	env         Environment

	reactions *reactionTable
	ready     *readyTable
	barrier   *idleBarrier

	diag *diagnosticsCounters
}

// New constructs a Scheduler. It is inert until Init is called.
func New(opts ...Option) *Scheduler {
	return &Scheduler{
		opts: resolveOptions(opts),
		diag: newDiagnosticsCounters(),
	}
}

// Init wires the scheduler to its environment and worker count, per spec.md
// §6. It is idempotent: a second call is a no-op that returns
// ErrAlreadyInitialized rather than disturbing the running scheduler.
func (s *Scheduler) Init(env Environment, numWorkers int, params Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized.Load() {
		return ErrAlreadyInitialized
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	if s.opts.autoMaxProcs {
		applyAutoMaxProcs(s.opts.logger)
	}
	s.env = env
	s.reactions = newReactionTable(params.Reactions)
	s.ready = newReadyTable(s.reactions.maxLvl, s.reactions.index)
	s.barrier = newIdleBarrier(numWorkers)
	s.initialized.Store(true)
	s.opts.logger.Info().
		Int("workers", numWorkers).
		Int("reactions", len(params.Reactions)).
		Int("max_level", int(s.reactions.maxLvl)).
		Log("scheduler initialized")
	return nil
}

// Free releases the scheduler's PQ storage. Per spec.md §6, the semaphore
// and environment's own resources are not this method's concern (the
// semaphore is GC'd with the Scheduler value; the environment outlives it).
//
// Unlike the source flagged in spec.md §9 (lf_sched_free leaks all but one
// level's PQ), every level is freed here.
func (s *Scheduler) Free() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized.Load() {
		return
	}
	s.ready.free()
	s.initialized.Store(false)
}

// Diagnostics returns a point-in-time snapshot of scheduler activity. See
// diagnostics.go; this is a supplementary, non-spec observability surface.
func (s *Scheduler) Diagnostics() Diagnostics {
	if !s.initialized.Load() {
		return Diagnostics{}
	}
	var lvl uint32
	s.mu.Lock()
	if s.ready != nil {
		lvl = s.ready.nextReactionLevel
	}
	s.mu.Unlock()
	return Diagnostics{
		Submitted:         s.diag.submitted.Load(),
		DuplicateTriggers: s.diag.duplicateTriggers.Load(),
		Dispatched:        s.diag.dispatched.Load(),
		LevelAdvances:     s.diag.levelAdvances.Load(),
		TagAdvances:       s.diag.tagAdvances.Load(),
		CurrentLevel:      lvl,
		IdleWorkers:       s.barrier.idleWorkers.Load(),
	}
}

// TriggerReaction implements spec.md §4.4's trigger_reaction: an atomic CAS
// admission test, followed (on success only) by insertion into the
// reaction's own level's PQ. workerID is accepted for API symmetry with the
// source (anonymous triggers pass -1) but is not otherwise consulted:
// admission is purely a function of the reaction's own status.
func (s *Scheduler) TriggerReaction(id ReactionID, workerID int) error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	if !s.reactions.valid(id) {
		return ErrUnknownReaction
	}
	if !s.reactions.tryTrigger(id) {
		// Expected race: another triggerer already admitted it this tag.
		s.diag.duplicateTriggers.Add(1)
		if s.diag.allowDuplicateLog(id) {
			s.opts.logger.Debug().
				Int("reaction", int(id)).
				Log("duplicate trigger suppressed")
		}
		return nil
	}
	s.diag.submitted.Add(1)
	lvl := s.reactions.level(id)
	s.ready.levels[lvl].insert(id)
	return nil
}

// GetReadyReaction implements spec.md §4.4's get_ready_reaction: the
// worker's main loop. It blocks until either a reaction is ready to run, or
// the scheduler has been stopped, in which case it returns
// (InvalidReaction, ErrStopped).
func (s *Scheduler) GetReadyReaction(ctx context.Context, workerID int) (ReactionID, error) {
	if !s.initialized.Load() {
		return InvalidReaction, ErrNotInitialized
	}
	for !s.barrier.stopped() {
		if s.ready.executing != nil {
			if id, ok := s.ready.executing.popMin(); ok {
				s.diag.dispatched.Add(1)
				return id, nil
			}
		}

		if s.barrier.reportIdle() {
			// Last idle worker: drive level/tag advance on its own stack,
			// then re-loop to either find work or observe should_stop.
			s.tryAdvanceTagAndDistribute()
			continue
		}

		if err := s.barrier.park(ctx); err != nil {
			return InvalidReaction, err
		}
	}
	return InvalidReaction, ErrStopped
}

// DoneWithReaction implements spec.md §4.4's done_with_reaction: the
// queued->inactive completion CAS. A CAS failure here is the fatal,
// unrecoverable contract violation spec.md §7 describes (it cannot mean a
// benign race, unlike trigger_reaction's CAS) and is reported via panic
// rather than a returned error, matching the "fatal assertion" handling
// spec.md prescribes for platform/contract failures.
func (s *Scheduler) DoneWithReaction(workerID int, id ReactionID) {
	if !s.initialized.Load() {
		err := &InvariantViolationError{Op: "done_with_reaction", Reaction: id, Cause: ErrNotInitialized}
		s.opts.logger.Err(err).Log("invariant violation")
		panic(err)
	}
	if !s.reactions.valid(id) {
		err := &InvariantViolationError{Op: "done_with_reaction", Reaction: id, Cause: ErrUnknownReaction}
		s.opts.logger.Err(err).Log("invariant violation")
		panic(err)
	}
	if ok, got := s.reactions.tryDone(id); !ok {
		err := &InvariantViolationError{
			Op:       "done_with_reaction",
			Reaction: id,
			Want:     StatusQueued,
			Got:      got,
		}
		s.opts.logger.Err(err).Log("invariant violation")
		panic(err)
	}
}

// SignalStop implements spec.md §4.3's signal_stop.
func (s *Scheduler) SignalStop() {
	s.barrier.signalStop()
	s.opts.logger.Info().Log("stop signaled")
}

// tryAdvanceTagAndDistribute implements spec.md §4.3's
// try_advance_tag_and_distribute, run on the single worker elected as last
// idle. Forward progress is structural: distributeReadyReactions always
// either returns >0 (loop exits via notifyWorkers+break) or exhausts every
// level and resets the cursor, and advancing past L_max always calls
// AdvanceTagLocked exactly once before the next distribute attempt — so the
// loop body strictly alternates "exhaust a tag's levels" / "advance one
// tag", with no branch that repeats work without making progress.
func (s *Scheduler) tryAdvanceTagAndDistribute() {
	for {
		if s.ready.atLastLevel() {
			s.ready.resetForNextTag()
			s.env.Lock()
			stop := s.env.AdvanceTagLocked()
			s.env.Unlock()
			s.diag.tagAdvances.Add(1)
			s.opts.logger.Debug().Log("tag advanced")
			if stop {
				s.barrier.signalStop()
				return
			}
		}
		if n := s.ready.distributeReadyReactions(s.env); n > 0 {
			s.diag.levelAdvances.Add(1)
			s.opts.logger.Debug().
				Int("level", int(s.ready.nextReactionLevel)).
				Int("ready", n).
				Log("level advanced")
			s.barrier.notifyWorkers(n)
			return
		}
	}
}
