package ackchan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recvTimeout receives a single value failing the test if the receiver blocks
// for too long.
func recvTimeout[T any](t *testing.T, rx *Receiver[T]) (T, bool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	value, ok, err := rx.Recv(ctx)
	require.NoError(t, err)
	return value, ok
}

// TestChannel_FIFO verifies that values sent through a single sender are
// received in order and that the channel closes after the sender is released.
func TestChannel_FIFO(t *testing.T) {
	tx, rx := New[int]()

	for i := range 5 {
		require.NoError(t, tx.Send(i))
	}
	assert.Equal(t, 5, rx.Len())
	tx.Release()

	for i := range 5 {
		value, ok := recvTimeout(t, rx)
		require.True(t, ok)
		assert.Equal(t, i, value)
	}

	_, ok := recvTimeout(t, rx)
	assert.False(t, ok)
}

// TestChannel_CloseAfterAllSenders verifies that the channel stays open while
// any clone is alive.
func TestChannel_CloseAfterAllSenders(t *testing.T) {
	tx, rx := New[int]()

	clone, err := tx.Clone()
	require.NoError(t, err)
	tx.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// One sender is still alive, so the receiver must block.
	_, ok, err := rx.Recv(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	clone.Release()
	_, ok = recvTimeout(t, rx)
	assert.False(t, ok)

	// Closure is sticky.
	_, ok = recvTimeout(t, rx)
	assert.False(t, ok)
}

// TestChannel_ReleaseIdempotent verifies that releasing the same handle twice
// does not account for another sender.
func TestChannel_ReleaseIdempotent(t *testing.T) {
	tx, rx := New[int]()

	clone, err := tx.Clone()
	require.NoError(t, err)

	tx.Release()
	tx.Release()

	require.NoError(t, clone.Send(7))
	value, ok := recvTimeout(t, rx)
	require.True(t, ok)
	assert.Equal(t, 7, value)

	clone.Release()
	_, ok = recvTimeout(t, rx)
	assert.False(t, ok)
}

// TestChannel_ReleasedSender verifies that a released handle can neither send
// nor mint new senders.
func TestChannel_ReleasedSender(t *testing.T) {
	tx, _ := New[int]()
	tx.Release()

	assert.ErrorIs(t, tx.Send(1), ErrSenderReleased)

	_, err := tx.Clone()
	assert.ErrorIs(t, err, ErrSenderReleased)
}

// TestChannel_ReceiverGone verifies that sends fail once the receiver is
// closed.
func TestChannel_ReceiverGone(t *testing.T) {
	tx, rx := New[int]()
	require.NoError(t, tx.Send(1))

	rx.Close()
	assert.Equal(t, 0, rx.Len())
	assert.ErrorIs(t, tx.Send(2), ErrReceiverGone)

	_, ok := recvTimeout(t, rx)
	assert.False(t, ok)
}

// TestChannel_ManyProducers verifies that every value sent by concurrent
// producers is received exactly once and that the receiver observes closure
// after the last producer exits.
func TestChannel_ManyProducers(t *testing.T) {
	const (
		producers = 16
		perSender = 100
	)

	tx, rx := New[int]()

	wg := sync.WaitGroup{}
	for p := range producers {
		sender, err := tx.Clone()
		require.NoError(t, err)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sender.Release()
			for i := range perSender {
				assert.NoError(t, sender.Send(p*perSender+i))
			}
		}()
	}
	tx.Release()

	seen := make(map[int]struct{}, producers*perSender)
	for {
		value, ok := recvTimeout(t, rx)
		if !ok {
			break
		}
		_, dup := seen[value]
		require.False(t, dup, "value %d received twice", value)
		seen[value] = struct{}{}
	}

	wg.Wait()
	assert.Len(t, seen, producers*perSender)
}

// TestChannel_BlockedReceiverWakesOnSend verifies that a receiver blocked on an
// empty queue is woken by a send from another goroutine.
func TestChannel_BlockedReceiverWakesOnSend(t *testing.T) {
	tx, rx := New[string]()
	defer tx.Release()

	go func() {
		time.Sleep(20 * time.Millisecond)
		assert.NoError(t, tx.Send("ack"))
	}()

	value, ok := recvTimeout(t, rx)
	require.True(t, ok)
	assert.Equal(t, "ack", value)
}
