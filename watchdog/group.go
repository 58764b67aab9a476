package watchdog

import (
	"fmt"
	"sync"
	"time"
)

// Group supervises every watchdog declared by a single reactor, the way a
// reactor's self-struct owns one thread per declared watchdog in the
// source. It exists so a caller does not need to keep its own
// name->*Watchdog map and close them all individually at shutdown.
type Group struct {
	mu        sync.Mutex
	watchdogs map[string]*Watchdog
	logger    Logger
}

// GroupOption configures a Group at construction.
type GroupOption func(*Group)

// WithGroupLogger attaches a logger used for registration/close events, and
// as the default logger for every Watchdog the group Registers (a caller
// passing its own WithLogger to Register still overrides this default).
func WithGroupLogger(l Logger) GroupOption {
	return func(g *Group) { g.logger = l }
}

// NewGroup constructs an empty Group.
func NewGroup(opts ...GroupOption) *Group {
	g := &Group{watchdogs: make(map[string]*Watchdog)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register creates and starts a new named Watchdog within the group.
// Returns ErrDuplicateName if name is already registered.
func (g *Group) Register(name string, minExpiration time.Duration, handler Handler, opts ...Option) (*Watchdog, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.watchdogs[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	if g.logger != nil {
		// The group's logger is the default for every watchdog it owns;
		// an explicit WithLogger in opts still wins, applied afterward.
		opts = append([]Option{WithLogger(g.logger)}, opts...)
	}
	w := New(name, minExpiration, handler, opts...)
	g.watchdogs[name] = w
	if g.logger != nil {
		g.logger.Debug().Str("watchdog", name).Log("watchdog registered")
	}
	return w, nil
}

// Get returns the named watchdog, or ErrNotFound.
func (g *Group) Get(name string) (*Watchdog, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	w, ok := g.watchdogs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return w, nil
}

// Start arms the named watchdog. See Watchdog.Start.
func (g *Group) Start(name string, additional time.Duration) error {
	w, err := g.Get(name)
	if err != nil {
		return err
	}
	return w.Start(additional)
}

// Stop disarms the named watchdog. See Watchdog.Stop.
func (g *Group) Stop(name string) error {
	w, err := g.Get(name)
	if err != nil {
		return err
	}
	return w.Stop()
}

// Close terminates every watchdog in the group and waits for all of their
// monitor goroutines to exit, mirroring the source's shutdown sequence of
// acquiring each reactor mutex, setting terminate, signaling, and joining.
func (g *Group) Close() {
	g.mu.Lock()
	watchdogs := make([]*Watchdog, 0, len(g.watchdogs))
	for _, w := range g.watchdogs {
		watchdogs = append(watchdogs, w)
	}
	g.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(len(watchdogs))
	for _, w := range watchdogs {
		go func(w *Watchdog) {
			defer wg.Done()
			w.Close()
		}(w)
	}
	wg.Wait()

	if g.logger != nil {
		g.logger.Debug().Int("count", len(watchdogs)).Log("watchdog group closed")
	}
}
