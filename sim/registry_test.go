package sim

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/agora/core"
	"github.com/hupe1980/agora/export"
	"github.com/hupe1980/agora/logging"
	"github.com/hupe1980/agora/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietRegistry(factory model.Factory, sink export.Sink, optFns ...func(o *Options)) *Registry {
	fns := append([]func(o *Options){func(o *Options) {
		o.Logger = logging.NoOpLogger{}
		o.IdleGrace = 0
	}}, optFns...)
	return NewRegistry(factory, sink, fns...)
}

func waitDone(t *testing.T, reg *Registry, id string) *RunState {
	t.Helper()
	state, err := reg.Get(id)
	require.NoError(t, err)
	select {
	case <-state.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not terminate in time")
	}
	return state
}

func TestRegistryRejectsInvalidConfig(t *testing.T) {
	reg := quietRegistry(sharedFactory(model.NewMockModel("mock-1", "mock")), export.NewMemorySink())

	cfg := debateConfig(1)
	cfg.Agents = cfg.Agents[:1]
	_, err := reg.Start(cfg)
	require.Error(t, err)
	assert.True(t, core.IsSafe(err))
	assert.Equal(t, 0, reg.Active())
}

func TestRegistryCapacity(t *testing.T) {
	blocked := model.NewMockModel("mock-1", "mock").BlockUntilCancel()
	reg := quietRegistry(sharedFactory(blocked), export.NewMemorySink())

	id, err := reg.Start(debateConfig(1))
	require.NoError(t, err)

	_, err = reg.Start(debateConfig(1))
	assert.ErrorIs(t, err, core.ErrCapacity)

	// Stopping the blocked run frees the slot.
	require.NoError(t, reg.Stop(id))
	state := waitDone(t, reg, id)
	assert.Equal(t, core.StatusStopped, state.Status())

	id2, err := reg.Start(debateConfig(1))
	require.NoError(t, err)
	require.NoError(t, reg.Stop(id2))
	waitDone(t, reg, id2)
}

func TestRegistryCapacityAboveOne(t *testing.T) {
	blocked := model.NewMockModel("mock-1", "mock").BlockUntilCancel()
	reg := quietRegistry(sharedFactory(blocked), export.NewMemorySink(), func(o *Options) {
		o.Capacity = 2
	})

	id1, err := reg.Start(debateConfig(1))
	require.NoError(t, err)
	id2, err := reg.Start(debateConfig(1))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Active())

	_, err = reg.Start(debateConfig(1))
	assert.ErrorIs(t, err, core.ErrCapacity)

	require.NoError(t, reg.Stop(id1))
	require.NoError(t, reg.Stop(id2))
	waitDone(t, reg, id1)
	waitDone(t, reg, id2)
}

func TestRegistryStopUnknownRun(t *testing.T) {
	reg := quietRegistry(sharedFactory(model.NewMockModel("mock-1", "mock")), export.NewMemorySink())
	assert.ErrorIs(t, reg.Stop("nope"), core.ErrNotFound)
}

func TestRegistryExport(t *testing.T) {
	blocked := model.NewMockModel("mock-1", "mock").BlockUntilCancel()
	sink := export.NewMemorySink()
	reg := quietRegistry(sharedFactory(blocked), sink)

	_, err := reg.Export(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)

	id, err := reg.Start(debateConfig(1))
	require.NoError(t, err)

	_, err = reg.Export(context.Background(), id)
	assert.ErrorIs(t, err, core.ErrNotReady)

	require.NoError(t, reg.Stop(id))
	waitDone(t, reg, id)

	rec, err := reg.Export(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.RunID)
	assert.Equal(t, core.StatusStopped, rec.Status)

	// The sink received the record on the terminal path too.
	fromSink, err := sink.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, rec.RunID, fromSink.RunID)
}

func TestRegistryIdleMonitorStopsUnobservedRun(t *testing.T) {
	// Generation hangs, so without the idle monitor the run would sit in
	// typing forever. Nobody attaches; the grace period expires.
	blocked := model.NewMockModel("mock-1", "mock").BlockUntilCancel()
	sink := export.NewMemorySink()
	reg := NewRegistry(sharedFactory(blocked), sink, func(o *Options) {
		o.Logger = logging.NoOpLogger{}
		o.IdleGrace = 50 * time.Millisecond
	})

	id, err := reg.Start(debateConfig(1))
	require.NoError(t, err)

	state := waitDone(t, reg, id)
	assert.Equal(t, core.StatusStopped, state.Status())
	assert.Empty(t, state.Transcript())
}

func TestRegistryIdleMonitorSparesObservedRun(t *testing.T) {
	blocked := model.NewMockModel("mock-1", "mock").BlockUntilCancel()
	reg := NewRegistry(sharedFactory(blocked), export.NewMemorySink(), func(o *Options) {
		o.Logger = logging.NoOpLogger{}
		o.IdleGrace = 50 * time.Millisecond
	})

	id, err := reg.Start(debateConfig(1))
	require.NoError(t, err)
	state, err := reg.Get(id)
	require.NoError(t, err)

	sub := state.Bus().Attach()
	defer state.Bus().Detach(sub)

	select {
	case <-state.Done():
		t.Fatal("observed run was stopped by the idle monitor")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, reg.Stop(id))
	waitDone(t, reg, id)
}

func TestRegistryIdleMonitorStopsAbandonedRun(t *testing.T) {
	// An observer attaches so the run starts, then walks away and nobody
	// returns within the grace period.
	blocked := model.NewMockModel("mock-1", "mock").BlockUntilCancel()
	reg := NewRegistry(sharedFactory(blocked), export.NewMemorySink(), func(o *Options) {
		o.Logger = logging.NoOpLogger{}
		o.IdleGrace = 50 * time.Millisecond
	})

	id, err := reg.Start(debateConfig(1))
	require.NoError(t, err)
	state, err := reg.Get(id)
	require.NoError(t, err)

	sub := state.Bus().Attach()
	for ev := range sub.C {
		if d, ok := ev.Data.(core.StatusData); ok && d.Status == core.SignalStarted {
			break
		}
	}
	state.Bus().Detach(sub)

	stopped := waitDone(t, reg, id)
	assert.Equal(t, core.StatusStopped, stopped.Status())
	assert.Empty(t, stopped.Transcript())
}
