package sim

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agora/core"
	"github.com/hupe1980/agora/export"
	"github.com/hupe1980/agora/logging"
	"github.com/hupe1980/agora/model"
)

// Options configure a Registry.
type Options struct {
	// Logger receives registry and runner diagnostics.
	Logger logging.Logger
	// Limits bound run configurations at validation time.
	Limits core.Limits
	// Capacity is the concurrency ceiling for active runs (default 1,
	// matching the single-run deployment policy).
	Capacity int
	// IdleGrace is how long a run may go unobserved before it is stopped
	// automatically. Zero or negative disables the idle monitor.
	IdleGrace time.Duration
	// BufferSize is the per-observer event channel buffer.
	BufferSize int
}

// Registry owns the mapping from run identifiers to their state. It
// validates and admits new runs, launches the Runner goroutine and the idle
// monitor, and answers stop/export/lookup requests from the transport layer.
type Registry struct {
	factory model.Factory
	sink    export.Sink
	opts    Options

	mu   sync.RWMutex
	runs map[string]*RunState
}

// NewRegistry creates a Registry backed by the given model factory and
// export sink.
func NewRegistry(factory model.Factory, sink export.Sink, optFns ...func(o *Options)) *Registry {
	opts := Options{
		Logger:    logging.NewDefaultSlogLogger(),
		Limits:    core.DefaultLimits(),
		Capacity:  1,
		IdleGrace: 5 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		factory: factory,
		sink:    sink,
		opts:    opts,
		runs:    make(map[string]*RunState),
	}
}

// Start validates the configuration, reserves a run slot and launches the
// runner goroutine. It returns the run identifier immediately; completion is
// observed through the event bus or RunState.Done.
func (r *Registry) Start(cfg core.RunConfig) (string, error) {
	if err := cfg.Validate(r.opts.Limits); err != nil {
		return "", err
	}

	r.mu.Lock()
	if r.active() >= r.opts.Capacity {
		r.mu.Unlock()
		return "", core.ErrCapacity
	}
	state := newRunState(cfg, r.opts.BufferSize)
	ctx, cancel := context.WithCancel(context.Background())
	state.cancel = cancel
	r.runs[state.ID] = state
	r.mu.Unlock()

	runner := &Runner{
		state:   state,
		factory: r.factory,
		sink:    r.sink,
		logger:  logging.ForRun(r.opts.Logger, state.ID),
		grace:   r.opts.IdleGrace,
	}
	go runner.Run(ctx)
	if r.opts.IdleGrace > 0 {
		go watchIdle(state, r.opts.IdleGrace)
	}

	r.opts.Logger.Info("run started",
		"run_id", state.ID, "mode", cfg.Mode, "agents", len(cfg.Agents), "round_limit", cfg.RoundLimit)
	return state.ID, nil
}

// active counts non-terminal runs. Caller holds r.mu.
func (r *Registry) active() int {
	n := 0
	for _, s := range r.runs {
		if !s.Terminal() {
			n++
		}
	}
	return n
}

// Get returns the state for a run id.
func (r *Registry) Get(id string) (*RunState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.runs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return state, nil
}

// Stop sets the run's cancellation signal. Idempotent; stopping a terminal
// run is a no-op.
func (r *Registry) Stop(id string) error {
	state, err := r.Get(id)
	if err != nil {
		return err
	}
	state.Stop()
	return nil
}

// Export returns the run's transcript record once the run is terminal;
// before that it reports ErrNotReady. Runs no longer held in memory are
// looked up in the sink.
func (r *Registry) Export(ctx context.Context, id string) (export.Record, error) {
	state, err := r.Get(id)
	if err != nil {
		return r.sink.Load(ctx, id)
	}
	if !state.Terminal() {
		return export.Record{}, core.ErrNotReady
	}
	return state.Record(), nil
}

// Active returns the number of currently active (non-terminal) runs.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active()
}
