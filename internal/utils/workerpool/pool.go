// Package workerpool provides an executor that runs tasks concurrently and
// collects their results.
package workerpool

import (
	"context"
	"sync"

	log "go.uber.org/zap"
)

// Task is a unit of work executed by the pool.
type Task[R any] interface {
	Run(ctx context.Context) R
}

// Pool runs each added task in its own goroutine.
//
// The pool does not cancel its tasks: stopping them is the responsibility of
// whatever protocol the tasks share.
type Pool[R any] struct {
	closed bool         // set by Close, further tasks are rejected
	mu     sync.RWMutex // protects closed

	results   []R
	resultsMu sync.Mutex

	wg sync.WaitGroup // used to wait for all tasks to complete

	log *log.Logger
}

// New creates a new instance of Pool.
func New[R any](logger *log.Logger) *Pool[R] {
	return &Pool[R]{
		log: logger,
	}
}

// Add starts task in a new goroutine. It returns false if the pool has already
// been closed and the task was not started.
//
// A panic raised by the task is recovered and logged; no result is recorded
// for such a task.
func (m *Pool[R]) Add(ctx context.Context, task Task[R]) bool {
	// Acquire a read lock so that Close cannot start waiting between the check
	// and the counter increment.
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				m.log.Error("task panicked", log.Any("panic", r), log.Stack("stack"))
			}
		}()

		result := task.Run(ctx)

		m.resultsMu.Lock()
		m.results = append(m.results, result)
		m.resultsMu.Unlock()
	}()

	return true
}

// Close rejects further tasks and waits for all running tasks to finish. It
// returns the results in completion order. Close may be called more than once.
func (m *Pool[R]) Close() []R {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	// Wait for all tasks to finish their execution.
	m.wg.Wait()

	m.resultsMu.Lock()
	defer m.resultsMu.Unlock()

	results := make([]R, len(m.results))
	copy(results, m.results)
	return results
}
