// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Stepwise Authors

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/stepwise-game/stepwise/internal/execution"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeRunner blocks until interrupted, or runs body when set.
type fakeRunner struct {
	body       func(ctx context.Context) error
	interrupts atomic.Int32
	stop       chan struct{}
	stopOnce   sync.Once
}

func newFakeRunner(body func(ctx context.Context) error) *fakeRunner {
	return &fakeRunner{body: body, stop: make(chan struct{})}
}

func (r *fakeRunner) Run(ctx context.Context) error {
	if r.body != nil {
		return r.body(ctx)
	}
	select {
	case <-r.stop:
		return errors.New("interrupted")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *fakeRunner) Interrupt() {
	r.interrupts.Add(1)
	r.stopOnce.Do(func() { close(r.stop) })
}

func factoryFor(r Runner) Factory {
	return func(context.Context) (Runner, error) { return r, nil }
}

type reports struct {
	mu   sync.Mutex
	errs []error
}

func (r *reports) report(_ uuid.UUID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *reports) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func TestSpawn_ConflictWhileActive(t *testing.T) {
	s := NewSupervisor(nil, nil)
	r := newFakeRunner(nil)

	h, err := s.Spawn(context.Background(), factoryFor(r))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, h.ID())
	assert.Same(t, h, s.Active())

	_, err = s.Spawn(context.Background(), factoryFor(newFakeRunner(nil)))
	assert.ErrorIs(t, err, ErrSpawnConflict)
	assert.Same(t, h, s.Active(), "conflicting spawn must not replace the handle")

	h.Interrupt()
	<-h.Done()
}

func TestWatch_FinishedWithoutShutdown(t *testing.T) {
	s := NewSupervisor(nil, nil)
	m := execution.NewMachine()
	m.Request(execution.Running)
	m.Apply()

	release := make(chan struct{})
	h, err := s.Spawn(context.Background(), factoryFor(newFakeRunner(func(context.Context) error {
		<-release
		return nil
	})))
	require.NoError(t, err)

	assert.False(t, s.Watch(m, execution.NewStepper()))
	assert.False(t, h.IsFinished())

	close(release)
	<-h.Done()

	assert.True(t, s.Watch(m, execution.NewStepper()))
	assert.Nil(t, s.Active())
	next, ok := m.Pending()
	require.True(t, ok)
	assert.Equal(t, execution.Finished, next)
	assert.NoError(t, h.Err())
}

func TestWatch_NoActiveWorker(t *testing.T) {
	s := NewSupervisor(nil, nil)
	m := execution.NewMachine()
	assert.False(t, s.Watch(m, execution.NewStepper()))
	_, ok := m.Pending()
	assert.False(t, ok)
}

func TestWatch_StoppingInterruptsAndWakesParkedWorker(t *testing.T) {
	rep := &reports{}
	s := NewSupervisor(rep.report, nil)
	m := execution.NewMachine()
	stepper := execution.NewStepper()

	m.Request(execution.Stepping)
	m.Apply()

	// The worker parks on the stepper and ignores interrupts while parked.
	r := newFakeRunner(nil)
	r.body = func(ctx context.Context) error {
		stepper.Wait()
		return ctx.Err()
	}
	h, err := s.Spawn(context.Background(), factoryFor(r))
	require.NoError(t, err)
	require.Eventually(t, stepper.IsWaiting, time.Second, time.Millisecond)

	m.Request(execution.Stopping)
	m.Apply()

	assert.False(t, s.Watch(m, stepper))
	assert.True(t, h.Interrupted())
	assert.EqualValues(t, 1, r.interrupts.Load())

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("worker still parked after watch")
	}

	assert.True(t, s.Watch(m, stepper))
	next, ok := m.Pending()
	require.True(t, ok)
	assert.Equal(t, execution.Stopped, next)

	require.Len(t, rep.all(), 1)
	assert.ErrorIs(t, rep.all()[0], context.Canceled)
}

func TestWatch_StoppingRunawayScript(t *testing.T) {
	s := NewSupervisor(nil, nil)
	m := execution.NewMachine()
	m.Request(execution.Running)
	m.Apply()

	r := newFakeRunner(nil)
	h, err := s.Spawn(context.Background(), factoryFor(r))
	require.NoError(t, err)

	m.Request(execution.Stopping)
	m.Apply()
	s.Watch(m, execution.NewStepper())
	<-h.Done()

	s.Watch(m, execution.NewStepper())
	m.Apply()
	assert.Equal(t, execution.Stopped, m.Current())
	assert.Nil(t, s.Active())
}

func TestHandle_InterruptAfterFinishIsNoop(t *testing.T) {
	s := NewSupervisor(nil, nil)
	r := newFakeRunner(func(context.Context) error { return nil })

	h, err := s.Spawn(context.Background(), factoryFor(r))
	require.NoError(t, err)
	<-h.Done()

	assert.NotPanics(t, h.Interrupt)
	assert.Zero(t, r.interrupts.Load())
	assert.False(t, h.Interrupted())
}

func TestSpawn_ReportsScriptError(t *testing.T) {
	rep := &reports{}
	s := NewSupervisor(rep.report, nil)
	sentinel := errors.New("NameError: foo")

	h, err := s.Spawn(context.Background(), factoryFor(newFakeRunner(func(context.Context) error {
		return sentinel
	})))
	require.NoError(t, err)
	<-h.Done()

	assert.ErrorIs(t, h.Err(), sentinel)
	require.Len(t, rep.all(), 1)
	assert.ErrorIs(t, rep.all()[0], sentinel)
}

func TestSpawn_FactoryErrorFinishesWorker(t *testing.T) {
	rep := &reports{}
	s := NewSupervisor(rep.report, nil)
	sentinel := errors.New("syntax error")

	h, err := s.Spawn(context.Background(), func(context.Context) (Runner, error) {
		return nil, sentinel
	})
	require.NoError(t, err)
	<-h.Done()

	assert.ErrorIs(t, h.Err(), sentinel)
	assert.Len(t, rep.all(), 1)
}

func TestSpawn_RecoversRunnerPanic(t *testing.T) {
	s := NewSupervisor(nil, nil)
	h, err := s.Spawn(context.Background(), factoryFor(newFakeRunner(func(context.Context) error {
		panic("bad binding")
	})))
	require.NoError(t, err)
	<-h.Done()

	require.Error(t, h.Err())
	assert.Contains(t, h.Err().Error(), "bad binding")
}

func TestSpawn_RecoversFactoryPanic(t *testing.T) {
	s := NewSupervisor(nil, nil)
	h, err := s.Spawn(context.Background(), func(context.Context) (Runner, error) {
		panic("no interpreter")
	})
	require.NoError(t, err)
	<-h.Done()
	assert.Error(t, h.Err())
}

func TestWatch_SettlesStateWithoutWorker(t *testing.T) {
	tests := []struct {
		name    string
		state   execution.State
		pending *execution.State
		want    execution.State
	}{
		{"stopping", execution.Stopping, nil, execution.Stopped},
		{"running", execution.Running, nil, execution.Finished},
		{"stepping", execution.Stepping, nil, execution.Finished},
		{"running over pending run", execution.Running, ptr(execution.Running), execution.Finished},
		{"pending stopped kept", execution.Running, ptr(execution.Stopped), execution.Stopped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSupervisor(nil, nil)
			m := execution.NewMachine()
			m.Request(tt.state)
			m.Apply()
			if tt.pending != nil {
				m.Request(*tt.pending)
			}

			assert.False(t, s.Watch(m, execution.NewStepper()))
			next, ok := m.Pending()
			require.True(t, ok)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestWatch_RetirementOverwrittenByStop(t *testing.T) {
	s := NewSupervisor(nil, nil)
	m := execution.NewMachine()
	m.Request(execution.Running)
	m.Apply()

	h, err := s.Spawn(context.Background(), factoryFor(newFakeRunner(func(context.Context) error {
		return nil
	})))
	require.NoError(t, err)
	<-h.Done()
	require.True(t, s.Watch(m, execution.NewStepper()))

	// A stop that still saw Running replaces the Finished request.
	m.Request(execution.Stopping)
	m.Apply()

	for i := 0; i < 3; i++ {
		s.Watch(m, execution.NewStepper())
		m.Apply()
	}
	assert.Equal(t, execution.Stopped, m.Current())
}

func TestSpawn_SlowFactoryDoesNotBlockActive(t *testing.T) {
	s := NewSupervisor(nil, nil)
	release := make(chan struct{})
	entered := make(chan struct{})

	type spawned struct {
		h   *Handle
		err error
	}
	result := make(chan spawned, 1)
	go func() {
		h, err := s.Spawn(context.Background(), func(context.Context) (Runner, error) {
			close(entered)
			<-release
			return newFakeRunner(func(context.Context) error { return nil }), nil
		})
		result <- spawned{h, err}
	}()
	<-entered

	active := make(chan *Handle, 1)
	go func() {
		s.Interrupt()
		active <- s.Active()
	}()
	select {
	case h := <-active:
		assert.Nil(t, h)
	case <-time.After(time.Second):
		t.Fatal("Active blocked while the factory was running")
	}

	_, err := s.Spawn(context.Background(), factoryFor(newFakeRunner(nil)))
	assert.ErrorIs(t, err, ErrSpawnConflict, "a starting worker holds the slot")

	close(release)
	res := <-result
	require.NoError(t, res.err)
	<-res.h.Done()
	assert.Same(t, res.h, s.Active())
}

func ptr(s execution.State) *execution.State { return &s }
