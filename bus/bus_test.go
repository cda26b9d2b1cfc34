package bus

import (
	"testing"

	"github.com/hupe1980/agora/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(s *Subscriber) []core.Event {
	var events []core.Event
	for {
		select {
		case ev, ok := <-s.C:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestAttachDeliversConnectedEvent(t *testing.T) {
	b := New(0)
	sub := b.Attach()
	defer b.Detach(sub)

	ev := <-sub.C
	require.Equal(t, core.EventStatus, ev.Type)
	assert.Equal(t, core.StatusData{Status: core.SignalConnected}, ev.Data)
}

func TestFanOutIdenticalOrder(t *testing.T) {
	b := New(0)
	first := b.Attach()
	second := b.Attach()
	defer b.Detach(first)
	defer b.Detach(second)
	assert.Equal(t, 2, b.Count())

	b.Publish(core.NewTypingEvent("Ada", 1))
	b.Publish(core.NewTokenEvent("Ada", 1, "hi", core.RoleAgent))
	b.Publish(core.NewMessageEvent("Ada", 1, "hi", core.RoleAgent, "m"))

	got1 := drain(first)
	got2 := drain(second)
	require.Len(t, got1, 4) // connected + 3 published
	assert.Equal(t, got1, got2, "every observer sees the same sequence in the same order")
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	b := New(0)
	early := b.Attach()
	defer b.Detach(early)

	b.Publish(core.NewTypingEvent("Ada", 1))
	b.Publish(core.NewMessageEvent("Ada", 1, "hi", core.RoleAgent, "m"))

	late := b.Attach()
	defer b.Detach(late)

	got := drain(late)
	require.Len(t, got, 1, "late subscriber only sees its connected event")
	assert.Equal(t, core.StatusData{Status: core.SignalConnected}, got[0].Data)
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	b := New(2)
	slow := b.Attach() // connected event occupies one slot
	defer b.Detach(slow)

	// Overfill: publish must drop, not block.
	for i := 0; i < 10; i++ {
		b.Publish(core.NewTokenEvent("Ada", 1, "x", core.RoleAgent))
	}
	assert.Equal(t, 2, slow.Pending())
}

func TestDetachIsIdempotentAndStopsDelivery(t *testing.T) {
	b := New(0)
	sub := b.Attach()
	b.Detach(sub)
	b.Detach(sub)
	assert.Equal(t, 0, b.Count())

	// Publishing after detach must not panic.
	b.Publish(core.NewTypingEvent("Ada", 1))
}

func TestCloseDrainsBufferedEvents(t *testing.T) {
	b := New(0)
	sub := b.Attach()

	b.Publish(core.NewStatusEvent(string(core.StatusFinished)))
	b.Close()

	var got []core.Event
	for ev := range sub.C {
		got = append(got, ev)
	}
	require.Len(t, got, 2, "buffered events survive close")

	// Attaching after close yields a closed channel after the connected event.
	late := b.Attach()
	ev, ok := <-late.C
	require.True(t, ok)
	assert.Equal(t, core.StatusData{Status: core.SignalConnected}, ev.Data)
	_, ok = <-late.C
	assert.False(t, ok)
}

func TestLastChangeMovesOnAttachDetach(t *testing.T) {
	b := New(0)
	created := b.LastChange()

	sub := b.Attach()
	afterAttach := b.LastChange()
	assert.False(t, afterAttach.Before(created))

	b.Detach(sub)
	assert.False(t, b.LastChange().Before(afterAttach))
}
