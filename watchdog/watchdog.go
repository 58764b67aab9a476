package watchdog

import (
	"sync"
	"time"
)

// Handler is invoked when a Watchdog's deadline elapses with no further
// extension. It is called synchronously, with the Watchdog's mutex held
// (matching the source's "invoke the handler callback under the reactor
// mutex" design): it must not call back into Start/Stop/Close on the same
// Watchdog, and must not block for long, since it blocks the watchdog's own
// Start/Stop callers for its duration. The handler contract is no-throw; a
// panicking handler is out of scope and will propagate to the goroutine
// that runs this Watchdog's loop.
type Handler func()

// state is the watchdog thread's position in the machine: idle-wait,
// timed-wait, or terminated. Fired is not a state a reader can observe from
// outside: it is the instantaneous action taken when a timed-wait's
// deadline has passed, after which the machine returns to idle-wait.
type state uint8

const (
	stateIdle state = iota
	stateTimedWait
	stateTerminated
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateTimedWait:
		return "timed-wait"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Watchdog is a single bounded-time monitor: Start arms (or extends) its
// deadline, Stop disarms it, and if the deadline is ever reached without a
// further Start, Handler fires exactly once before the watchdog returns to
// idle-wait.
//
// The zero value is not usable; construct with New.
type Watchdog struct {
	name          string
	minExpiration time.Duration
	handler       Handler
	now           func() time.Time

	mu        sync.Mutex
	cond      *sync.Cond
	expire    time.Time // zero means NEVER (idle-wait)
	active    bool
	terminate bool
	done      chan struct{}

	logger Logger
}

// Option configures a Watchdog at construction.
type Option func(*Watchdog)

// WithClock overrides the time source used for comparing against the
// deadline; it does not exist in the source (which used a single physical
// clock) but is supplemented here so tests can inject a fake clock, the way
// eventloop's Loop accepts injected time sources for determinism.
func WithClock(now func() time.Time) Option {
	return func(w *Watchdog) { w.now = now }
}

// WithLogger sets the structured logger used for arm/disarm/fire events.
// The default, if unset, writes informational level and above via stumpy.
func WithLogger(l Logger) Option {
	return func(w *Watchdog) { w.logger = l }
}

// WithoutLogging disables all logging for this watchdog.
func WithoutLogging() Option {
	return func(w *Watchdog) { w.logger = noopLogger() }
}

// New constructs and starts a Watchdog's monitor goroutine in idle-wait.
// minExpiration is the fixed interval added to "now" by every Start call,
// mirroring the source's min_expiration field.
func New(name string, minExpiration time.Duration, handler Handler, opts ...Option) *Watchdog {
	w := &Watchdog{
		name:          name,
		minExpiration: minExpiration,
		handler:       handler,
		now:           time.Now,
		logger:        defaultLogger(),
		done:          make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	for _, opt := range opts {
		opt(w)
	}
	go w.run()
	return w
}

// Start arms the watchdog: expiration = now + minExpiration + additional.
// If the watchdog is currently idle (not already counting down), the
// monitor goroutine is signaled out of idle-wait; if it is already in
// timed-wait, no signal is needed; the goroutine will observe the new,
// later expiration the next time it wakes (at worst, once spuriously, at
// the old deadline) and re-arm against it before ever invoking the handler.
func (w *Watchdog) Start(additional time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.terminate {
		return ErrClosed
	}
	w.expire = w.now().Add(w.minExpiration + additional)
	w.logger.Debug().Str("watchdog", w.name).Dur("additional", additional).Log("watchdog armed")
	if !w.active {
		w.active = true
		w.cond.Signal()
	}
	return nil
}

// Stop disarms the watchdog: expiration = NEVER. The handler will not fire
// for the current arm cycle, however close to its deadline it was.
func (w *Watchdog) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.terminate {
		return ErrClosed
	}
	w.expire = time.Time{}
	w.active = false
	w.cond.Signal()
	w.logger.Debug().Str("watchdog", w.name).Log("watchdog stopped")
	return nil
}

// Close terminates the watchdog's monitor goroutine and waits for it to
// exit. It is idempotent.
func (w *Watchdog) Close() {
	w.mu.Lock()
	if !w.terminate {
		w.terminate = true
		w.expire = time.Time{}
		w.cond.Signal()
		w.logger.Debug().Str("watchdog", w.name).Log("watchdog closed")
	}
	w.mu.Unlock()
	<-w.done
}

// Name returns the watchdog's identifier, as supplied to New.
func (w *Watchdog) Name() string { return w.name }

// run is the monitor goroutine's main loop: idle-wait / timed-wait / fired /
// terminated, exactly as described for the source's watchdog thread. Every
// wake, spurious or not, re-checks expire and terminate under w.mu before
// acting on either — the Mesa-style condition-variable discipline the
// source's design notes call for explicitly.
func (w *Watchdog) run() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for {
		if w.terminate {
			close(w.done)
			return
		}

		if w.expire.IsZero() {
			// idle-wait: no deadline armed, block until Start/Close.
			w.cond.Wait()
			continue
		}

		now := w.now()
		if !now.Before(w.expire) {
			// fired: deadline reached with no further extension.
			w.expire = time.Time{}
			w.logger.Info().Str("watchdog", w.name).Log("watchdog fired")
			w.handler()
			w.active = false
			continue
		}

		// timed-wait: block until either signaled, or a timer fires
		// at the (possibly stale, if extended again meanwhile) deadline.
		// sync.Cond has no deadline-aware Wait, so a side timer takes
		// the place of the source's condition-variable absolute-time
		// wait, signaling the same cond when it elapses.
		remaining := w.expire.Sub(now)
		timer := time.AfterFunc(remaining, func() {
			w.mu.Lock()
			w.cond.Signal()
			w.mu.Unlock()
		})
		w.cond.Wait()
		timer.Stop()
	}
}
