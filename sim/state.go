package sim

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agora/bus"
	"github.com/hupe1980/agora/core"
	"github.com/hupe1980/agora/export"
)

// RunState is the mutable state of one simulation run. The transcript and
// status are mutated exclusively by the owning Runner goroutine; readers go
// through the accessor methods. Once the status is terminal the state is
// read-only.
type RunState struct {
	ID        string
	Config    core.RunConfig
	CreatedAt time.Time

	bus    *bus.Bus
	cancel context.CancelFunc
	done   chan struct{}

	mu          sync.RWMutex
	status      core.Status
	transcript  core.Transcript
	completedAt time.Time
}

func newRunState(cfg core.RunConfig, bufferSize int) *RunState {
	return &RunState{
		ID:        core.NewID(),
		Config:    cfg,
		CreatedAt: time.Now(),
		bus:       bus.New(bufferSize),
		done:      make(chan struct{}),
		status:    core.StatusCreated,
	}
}

// Status returns the current lifecycle status.
func (s *RunState) Status() core.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Terminal reports whether the run has reached a terminal status.
func (s *RunState) Terminal() bool { return s.Status().Terminal() }

// Transcript returns a copy of the transcript so far.
func (s *RunState) Transcript() core.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(core.Transcript, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Bus returns the run's event bus for observer attachment.
func (s *RunState) Bus() *bus.Bus { return s.bus }

// Done is closed once the Runner goroutine has fully wound down, after the
// terminal event is published and the transcript persisted.
func (s *RunState) Done() <-chan struct{} { return s.done }

// Stop requests cooperative cancellation. Idempotent.
func (s *RunState) Stop() { s.cancel() }

func (s *RunState) setStatus(status core.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *RunState) appendEntry(e core.TranscriptEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, e)
}

// complete records the terminal status and completion time. Calling it twice
// keeps the first terminal status (panic recovery may race a finished path).
func (s *RunState) complete(status core.Status) core.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return s.status
	}
	s.status = status
	s.completedAt = time.Now()
	return status
}

// Record renders the run as an export record. Only meaningful once terminal.
func (s *RunState) Record() export.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transcript := make(core.Transcript, len(s.transcript))
	copy(transcript, s.transcript)
	return export.Record{
		RunID:       s.ID,
		Topic:       s.Config.Topic,
		Mode:        s.Config.Mode,
		Status:      s.status,
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.completedAt,
		Transcript:  transcript,
	}
}
