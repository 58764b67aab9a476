package sched

import (
	"fmt"

	"go.uber.org/automaxprocs/maxprocs"
)

// applyAutoMaxProcs sets GOMAXPROCS to match the container/cgroup CPU quota,
// logging the outcome through the scheduler's own logger rather than the
// library's default stdlib logger. Errors are non-fatal: a failure to
// detect a quota (e.g. running outside a container) just leaves GOMAXPROCS
// at its Go-runtime default.
func applyAutoMaxProcs(logger Logger) {
	_, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		msg := format
		if len(args) > 0 {
			msg = fmt.Sprintf(format, args...)
		}
		logger.Debug().Log(msg)
	}))
	if err != nil {
		logger.Debug().Err(err).Log("automaxprocs: GOMAXPROCS left unchanged")
	}
}
