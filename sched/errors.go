package sched

import (
	"errors"
	"fmt"
)

// Expected, non-fatal conditions.
var (
	// ErrAlreadyInitialized is returned by Init when called on a scheduler
	// that has already been initialized. Init is idempotent: a second call
	// is a no-op that reports this error rather than re-initializing state.
	ErrAlreadyInitialized = errors.New("sched: already initialized")

	// ErrNotInitialized is returned when an operation requires Init to have
	// run first.
	ErrNotInitialized = errors.New("sched: scheduler not initialized")

	// ErrStopped is returned by GetReadyReaction once SignalStop has been
	// observed: it is the orderly "STOP" sentinel from spec.md, not a fault.
	ErrStopped = errors.New("sched: scheduler stopped")

	// ErrUnknownReaction is returned when a ReactionID outside the
	// registered range is passed to a scheduler operation.
	ErrUnknownReaction = errors.New("sched: unknown reaction id")
)

// InvariantViolationError is raised, via panic, when a contract the
// scheduler relies on for deterministic execution is broken: losing or
// duplicating a reaction dispatch cannot be reconstructed after the fact,
// so these are fail-fast rather than recoverable (spec.md §7).
type InvariantViolationError struct {
	// Op names the operation that detected the violation.
	Op string
	// Reaction is the reaction involved, if any.
	Reaction ReactionID
	// Want and Got describe the expected vs. observed status.
	Want, Got ReactionStatus
	// Cause optionally chains an underlying error.
	Cause error
}

func (e *InvariantViolationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sched: invariant violation in %s for reaction %d: want status %s, got %s: %v",
			e.Op, e.Reaction, e.Want, e.Got, e.Cause)
	}
	return fmt.Sprintf("sched: invariant violation in %s for reaction %d: want status %s, got %s",
		e.Op, e.Reaction, e.Want, e.Got)
}

func (e *InvariantViolationError) Unwrap() error { return e.Cause }
