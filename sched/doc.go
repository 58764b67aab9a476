// Package sched implements a deterministic, level-synchronized,
// work-distributing reaction scheduler (GEDF-NP: Global Earliest Deadline
// First, Non-Preemptive).
//
// A bounded population of reactions is registered up front, each tagged
// with a precedence level and an index within that level. The scheduler
// dispatches them to a fixed pool of worker goroutines such that:
//
//   - all reactions of level L complete before any reaction of level L+1
//     may begin at the same tag,
//   - within a level, reactions are dispatched in ascending index order,
//   - each reaction fires at most once per tag regardless of how many
//     triggers raced to enqueue it.
//
// Reaction bodies, the event queue that produces tag advances, and clock
// sources are out of scope: they are supplied by the host through the
// [Environment] interface.
package sched
