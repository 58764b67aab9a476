package watchdog

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger type accepted by Watchdog and Group. It
// matches sched.Logger's instantiation (stumpy-backed logiface.Logger)
// without importing the sched package, which keeps watchdog independent of
// sched; a host wires the same backend through either package.
type Logger = *logiface.Logger[*stumpy.Event]

// defaultLogger builds the out-of-the-box logger used when a Watchdog or
// Group is constructed without WithLogger/WithGroupLogger: stumpy writing
// to the process's default writer, at informational level.
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
