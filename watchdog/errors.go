package watchdog

import "errors"

var (
	// ErrClosed is returned by Start/Stop once Close has been called.
	ErrClosed = errors.New("watchdog: closed")

	// ErrDuplicateName is returned by Group.Register when the name is
	// already in use.
	ErrDuplicateName = errors.New("watchdog: duplicate name")

	// ErrNotFound is returned by Group operations addressing an unknown
	// watchdog name.
	ErrNotFound = errors.New("watchdog: not found")
)
