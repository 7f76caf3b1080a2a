package shutdown

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestShutdown verifies that a single listener is released once the signal is
// triggered.
func TestShutdown(t *testing.T) {
	shutdown := New()
	assert.False(t, shutdown.Signaled())

	wg := sync.WaitGroup{}

	// Start a goroutine that waits for the signal.
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-shutdown.Done()
	}()

	// Simulate some work before triggering shutdown.
	time.Sleep(50 * time.Millisecond)
	shutdown.Do()
	wg.Wait()

	assert.True(t, shutdown.Signaled())
}

// TestShutdown_ManyListeners verifies that every listener observes the signal,
// whether it started waiting before or after the trigger.
func TestShutdown_ManyListeners(t *testing.T) {
	shutdown := New()

	var released atomic.Int32
	wg := sync.WaitGroup{}
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, shutdown.Wait(context.Background()))
			released.Add(1)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	shutdown.Do()
	wg.Wait()
	assert.EqualValues(t, 8, released.Load())

	// A late listener must not block.
	select {
	case <-shutdown.Done():
	default:
		t.Fatal("Done channel is not closed after trigger")
	}
}

// TestShutdown_ConcurrentDo verifies that concurrent triggers neither panic
// nor leave the signal in a state other than signaled.
func TestShutdown_ConcurrentDo(t *testing.T) {
	shutdown := New()

	wg := sync.WaitGroup{}
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shutdown.Do()
		}()
	}
	wg.Wait()

	assert.True(t, shutdown.Signaled())
	assert.NoError(t, shutdown.Wait(context.Background()))

	// Triggering again after the fact is still a no-op.
	assert.NotPanics(t, shutdown.Do)
}

// TestShutdown_WaitContext verifies that Wait gives up when its context ends
// before the signal is triggered.
func TestShutdown_WaitContext(t *testing.T) {
	shutdown := New()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := shutdown.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, shutdown.Signaled())
}

// TestShutdown_WaitAlreadySignaled verifies that Wait prefers the signal over
// an already cancelled context.
func TestShutdown_WaitAlreadySignaled(t *testing.T) {
	shutdown := New()
	shutdown.Do()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, shutdown.Wait(ctx))
}
