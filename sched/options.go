package sched

// options holds configuration for New, following eventloop's LoopOption
// pattern (functional options collected into a struct, with an unexported
// concrete option type wrapping the apply function).
type options struct {
	logger       Logger
	autoMaxProcs bool
}

// Option configures a Scheduler at construction time.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithLogger sets the structured logger used for scheduler lifecycle and
// diagnostic events. The default, if unset, writes informational level and
// above via stumpy.
func WithLogger(l Logger) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

// WithoutLogging disables all scheduler logging.
func WithoutLogging() Option {
	return optionFunc(func(o *options) { o.logger = noopLogger() })
}

// WithAutoMaxProcs sets GOMAXPROCS from the container/cgroup CPU quota
// before Init sizes its worker pool, via go.uber.org/automaxprocs — the
// same mechanism used at the top of a long-running worker-pool service, so
// a scheduler's configured worker count actually matches what the runtime
// will schedule concurrently. See maxprocs.go.
func WithAutoMaxProcs(enabled bool) Option {
	return optionFunc(func(o *options) { o.autoMaxProcs = enabled })
}

func resolveOptions(opts []Option) options {
	o := options{
		logger: defaultLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(&o)
	}
	return o
}
