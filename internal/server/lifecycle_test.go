package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
}

func TestLifecycle_StartsAndStopsServices(t *testing.T) {
	logger := zaptest.NewLogger(t)
	lc := NewLifecycle(logger)

	svc1 := &mockService{}
	svc2 := &mockService{}

	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- lc.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start()
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}

func TestLifecycle_ServiceFailureIsReturned(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	healthy := &mockService{}
	boom := errors.New("port in use")
	lc.Add("healthy", healthy)
	lc.Add("broken", &mockService{startFn: func() error { return boom }})

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service broken")
	assert.True(t, healthy.stopped.Load())
}

// stuckService never returns from Stop.
type stuckService struct {
	release chan struct{}
}

func (s *stuckService) Start() error {
	<-s.release
	return nil
}

func (s *stuckService) Stop() {
	<-s.release
}

func TestLifecycle_StopTimeout(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.SetStopTimeout(50 * time.Millisecond)
	stuck := &stuckService{release: make(chan struct{})}
	t.Cleanup(func() { close(stuck.release) })
	lc.Add("stuck", stuck)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown ignored the stop timeout")
	}
}

func TestLifecycle_SetStopTimeoutIgnoresNonPositive(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.SetStopTimeout(0)
	assert.Equal(t, DefaultStopTimeout, lc.stopTimeout)
	lc.SetStopTimeout(-time.Second)
	assert.Equal(t, DefaultStopTimeout, lc.stopTimeout)
}
