// Package ackchan provides an unbounded many-producer single-consumer queue
// whose closure is detected by counting live producer handles.
//
// The receiver observes the channel as closed only after every [Sender]
// created for it (including the initial one returned by [New]) has been
// released and all queued values have been received.
package ackchan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrReceiverGone is returned by [Sender.Send] when the receiver has been
	// closed.
	ErrReceiverGone = errors.New("ackchan: receiver is gone")
	// ErrSenderReleased is returned when a released sender is used.
	ErrSenderReleased = errors.New("ackchan: sender is released")
)

// channel is the state shared by all handles.
type channel[T any] struct {
	mu       sync.Mutex
	queue    []T
	senders  int  // number of live senders
	detached bool // receiver has been closed

	// wake has a buffer of one and is written without blocking. A pending
	// token means the receiver must re-check the state.
	wake chan struct{}
}

func (m *channel[T]) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Sender is a producer handle. Each handle must be released exactly once via
// [Sender.Release]; additional calls are ignored.
type Sender[T any] struct {
	ch       *channel[T]
	released atomic.Bool
}

// Receiver is the single consumer handle.
type Receiver[T any] struct {
	ch *channel[T]
}

// New creates a channel and returns its initial sender and its receiver.
func New[T any]() (*Sender[T], *Receiver[T]) {
	ch := &channel[T]{
		senders: 1,
		wake:    make(chan struct{}, 1),
	}
	return &Sender[T]{ch: ch}, &Receiver[T]{ch: ch}
}

// Clone registers a new sender for the same channel. Cloning a released
// handle fails, since the channel may already be observed as closed.
func (m *Sender[T]) Clone() (*Sender[T], error) {
	m.ch.mu.Lock()
	defer m.ch.mu.Unlock()

	// Checked under the lock so a concurrent Release of this handle cannot
	// drop the count to zero in between.
	if m.released.Load() {
		return nil, ErrSenderReleased
	}
	m.ch.senders++

	return &Sender[T]{ch: m.ch}, nil
}

// Send enqueues value. It never blocks.
func (m *Sender[T]) Send(value T) error {
	m.ch.mu.Lock()
	defer m.ch.mu.Unlock()

	if m.released.Load() {
		return ErrSenderReleased
	}
	if m.ch.detached {
		return ErrReceiverGone
	}

	m.ch.queue = append(m.ch.queue, value)
	m.ch.signal()

	return nil
}

// Release drops the handle. When the last sender is released the receiver is
// woken so that it can detect closure.
func (m *Sender[T]) Release() {
	m.ch.mu.Lock()
	defer m.ch.mu.Unlock()

	if m.released.Swap(true) {
		return
	}

	m.ch.senders--
	if m.ch.senders == 0 {
		m.ch.signal()
	}
}

// Recv returns the next value in FIFO order. It blocks until a value is
// available, the channel is closed or ctx is done. On closure it returns
// ok == false and a nil error without blocking.
func (m *Receiver[T]) Recv(ctx context.Context) (value T, ok bool, err error) {
	for {
		m.ch.mu.Lock()
		switch {
		case len(m.ch.queue) > 0:
			value = m.ch.queue[0]
			var zero T
			m.ch.queue[0] = zero
			m.ch.queue = m.ch.queue[1:]
			m.ch.mu.Unlock()
			return value, true, nil

		case m.ch.senders == 0 || m.ch.detached:
			m.ch.mu.Unlock()
			return value, false, nil
		}
		m.ch.mu.Unlock()

		select {
		case <-ctx.Done():
			return value, false, ctx.Err()
		case <-m.ch.wake:
		}
	}
}

// Close drops the receiver. Queued values are discarded and further sends
// fail with [ErrReceiverGone].
func (m *Receiver[T]) Close() {
	m.ch.mu.Lock()
	defer m.ch.mu.Unlock()

	m.ch.detached = true
	m.ch.queue = nil
}

// Len returns the number of values waiting to be received.
func (m *Receiver[T]) Len() int {
	m.ch.mu.Lock()
	defer m.ch.mu.Unlock()

	return len(m.ch.queue)
}
