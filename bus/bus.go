// Package bus implements the per-run multicast channel distributing
// lifecycle, token, message and error events to every currently attached
// observer. Delivery is best-effort and non-blocking: a slow observer drops
// events rather than stalling the runner, and there is no replay buffer, so
// an observer attaching after an event will never see it.
package bus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/agora/core"
)

// DefaultBufferSize is the per-observer channel buffer. Large enough that a
// reasonably paced reader never drops, small enough to bound memory per
// subscriber.
const DefaultBufferSize = 256

// Subscriber is one attached observer. Read events from C; call Bus.Detach
// when done. C is closed on detach and when the bus closes.
type Subscriber struct {
	C  <-chan core.Event
	id uint64
	ch chan core.Event
}

// Pending returns the number of delivered-but-unread events.
func (s *Subscriber) Pending() int { return len(s.ch) }

// Bus fans events out to all attached subscribers in publish order. Attach
// and Detach may be called concurrently from transport connections; Publish
// is called by the owning runner goroutine.
type Bus struct {
	mu         sync.RWMutex
	subs       map[uint64]chan core.Event
	counter    uint64
	buffer     int
	closed     bool
	lastChange atomic.Int64 // UnixNano of the last attach/detach
}

// New constructs a Bus. bufferSize <= 0 selects DefaultBufferSize.
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	b := &Bus{subs: make(map[uint64]chan core.Event), buffer: bufferSize}
	b.lastChange.Store(time.Now().UnixNano())
	return b
}

// Attach registers a new observer and immediately enqueues a connected
// status event on it. The subscriber only receives events published after
// this call.
func (b *Bus) Attach() *Subscriber {
	ch := make(chan core.Event, b.buffer)
	ch <- core.NewStatusEvent(core.SignalConnected)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return &Subscriber{C: ch, ch: ch}
	}
	b.counter++
	id := b.counter
	b.subs[id] = ch
	b.lastChange.Store(time.Now().UnixNano())
	return &Subscriber{C: ch, id: id, ch: ch}
}

// Detach removes an observer and closes its channel. Safe to call more than
// once.
func (b *Bus) Detach(s *Subscriber) {
	if s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	close(s.ch)
	b.lastChange.Store(time.Now().UnixNano())
}

// Publish enqueues the event on every currently attached observer. It never
// blocks: when a subscriber's buffer is full the event is dropped for that
// subscriber only.
func (b *Bus) Publish(ev core.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Slow or stalled observer; no unbounded growth.
		}
	}
}

// Close detaches all observers and rejects further publishes. Called once
// the owning run is terminal and its final events are flushed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Count returns the number of currently attached observers.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// LastChange reports when the observer set last changed (or when the bus was
// created). The idle monitor uses this to detect unattended runs.
func (b *Bus) LastChange() time.Time {
	return time.Unix(0, b.lastChange.Load())
}
