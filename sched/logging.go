package sched

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger type accepted throughout this module.
// logiface is used directly rather than reintroducing a bespoke Logger
// interface: it already gives a pluggable, level-aware, zero-allocation-path
// facade, with stumpy (its own lightweight JSON backend) as the default.
type Logger = *logiface.Logger[*stumpy.Event]

// defaultLogger builds the out-of-the-box logger used when a Scheduler is
// constructed without WithLogger: stumpy writing to the process's default
// writer (stderr), at informational level.
func defaultLogger() Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(),
		stumpy.L.WithLevel(logiface.LevelInformational),
	)
}

// noopLogger discards everything; used when logging is explicitly disabled.
func noopLogger() Logger {
	return stumpy.L.New(stumpy.L.WithLevel(logiface.LevelDisabled))
}
