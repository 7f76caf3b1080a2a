// Package worker implements a task that races its own completion timer against
// a shared shutdown signal.
//
// The first worker whose timer fires triggers the signal for everybody else.
// Every worker that observes the signal instead of finishing sends its
// identifier back to the supervisor as an acknowledgment.
package worker

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	log "go.uber.org/zap"

	"github.com/yanet-platform/ackdrain/internal/types/workerid"
	"github.com/yanet-platform/ackdrain/internal/utils/ackchan"
	"github.com/yanet-platform/ackdrain/internal/utils/shutdown"
)

// State is a terminal state of a worker.
type State int

const (
	// FinishedNaturally means the work duration elapsed first and the worker
	// triggered the shutdown signal.
	FinishedNaturally State = iota + 1
	// Cancelled means the shutdown signal was observed first and the worker
	// acknowledged it.
	Cancelled
)

func (m State) String() string {
	switch m {
	case FinishedNaturally:
		return "finished"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome is the terminal record of a worker run.
type Outcome struct {
	ID    workerid.ID
	State State
	// AckErr holds the error of a failed acknowledgment. It is always nil for
	// naturally finished workers.
	AckErr error
}

// Worker is a single unit of work.
type Worker struct {
	id       workerid.ID
	duration time.Duration

	ack      *ackchan.Sender[workerid.ID]
	shutdown *shutdown.Shutdown
	clock    clock.Clock

	log *log.Logger
}

// New creates a new worker. The worker takes ownership of ack and releases it
// when Run returns.
func New(
	id workerid.ID,
	duration time.Duration,
	ack *ackchan.Sender[workerid.ID],
	shutdown *shutdown.Shutdown,
	clock clock.Clock,
	logger *log.Logger,
) *Worker {
	return &Worker{
		id:       id,
		duration: duration,
		ack:      ack,
		shutdown: shutdown,
		clock:    clock,
		log:      logger.With(id.Field()),
	}
}

// ID returns the worker identifier.
func (m *Worker) ID() workerid.ID {
	return m.id
}

// Run executes the worker until it either finishes its work or observes the
// shutdown signal. Exactly one of the two branches is taken.
//
// The context is not used for cancellation: a worker stops only through the
// shared shutdown signal.
func (m *Worker) Run(_ context.Context) Outcome {
	defer m.ack.Release()

	timer := m.clock.Timer(m.duration)
	defer timer.Stop()

	m.observe("Job started", log.Duration("duration", m.duration))

	// The signal may already be set, for example when the interrupt arrived
	// before the worker was scheduled. Checking it first keeps the select below
	// from picking the timer at random when both are ready.
	if m.shutdown.Signaled() {
		return m.cancel()
	}

	select {
	case <-timer.C:
		return m.finish()
	case <-m.shutdown.Done():
		return m.cancel()
	}
}

func (m *Worker) finish() Outcome {
	m.observe("Job finished")
	m.observe("Send shutdown signal to remaining tasks")
	m.shutdown.Do()

	return Outcome{ID: m.id, State: FinishedNaturally}
}

func (m *Worker) cancel() Outcome {
	m.observe("Shutdown signal received")

	err := m.ack.Send(m.id)
	if err != nil {
		m.observe("Failed to send ack", log.Error(err))
	} else {
		m.observe("Shutdown ack sent")
	}

	return Outcome{ID: m.id, State: Cancelled, AckErr: err}
}

func (m *Worker) observe(message string, fields ...log.Field) {
	m.log.Info(m.id.Line(message), fields...)
}
