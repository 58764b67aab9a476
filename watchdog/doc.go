// Package watchdog implements the per-reactor bounded-time monitor described
// alongside the scheduler: a goroutine per watchdog that fires a handler if
// its deadline elapses without being renewed via Start, and never fires if
// Stop is called first.
//
// Each Watchdog owns its own mutex and condition variable rather than
// sharing one across every watchdog declared by a reactor: the re-check
// discipline (always re-examine expiration/terminate after a wake) only
// needs to be correct per watchdog, not atomic across a reactor's whole set,
// so one mutex per Watchdog avoids Signal/Broadcast ambiguity between
// unrelated watchdogs without losing any guarantee. Group exists above that
// for callers that want to manage a reactor's watchdogs as a named set.
package watchdog
