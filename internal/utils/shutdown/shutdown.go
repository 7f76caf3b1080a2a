// Package shutdown provides a broadcast stop signal shared by a supervisor and
// its workers.
package shutdown

import (
	"context"
	"sync"
	"sync/atomic"
)

// Shutdown is a one-shot stop flag. Once triggered it stays triggered: every
// current and future waiter is released and there is no way to reset it.
type Shutdown struct {
	once     sync.Once
	signaled atomic.Bool
	notify   chan struct{} // closed on trigger
}

// New creates a new Shutdown instance in the non-signaled state.
func New() *Shutdown {
	return &Shutdown{
		notify: make(chan struct{}),
	}
}

// Do triggers the signal. Only the first call has an effect, subsequent and
// concurrent calls are no-ops.
func (m *Shutdown) Do() {
	m.once.Do(func() {
		m.signaled.Store(true)
		close(m.notify)
	})
}

// Done returns a channel that is closed when the signal is triggered. It is
// meant to be used as one of the cases of a select statement.
func (m *Shutdown) Done() <-chan struct{} {
	return m.notify
}

// Wait blocks until the signal is triggered or ctx is done. When the signal is
// already set it returns nil immediately, even if ctx is done as well.
func (m *Shutdown) Wait(ctx context.Context) error {
	if m.Signaled() {
		return nil
	}

	select {
	case <-m.notify:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Signaled reports whether the signal has been triggered.
func (m *Shutdown) Signaled() bool {
	return m.signaled.Load()
}
