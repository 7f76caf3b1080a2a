// Package supervisor spawns a fixed set of workers and coordinates their
// shutdown.
//
// A run ends in one of two ways. Either a worker finishes its work and
// triggers the shared shutdown signal, or the operator interrupts the run and
// the supervisor triggers the signal itself. In both cases the supervisor then
// drains acknowledgments from the cancelled workers and returns once every
// worker has released its acknowledgment sender.
package supervisor

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	log "go.uber.org/zap"

	"github.com/yanet-platform/ackdrain/internal/monitoring/logger"
	"github.com/yanet-platform/ackdrain/internal/types/runid"
	"github.com/yanet-platform/ackdrain/internal/types/workerid"
	"github.com/yanet-platform/ackdrain/internal/utils/ackchan"
	"github.com/yanet-platform/ackdrain/internal/utils/shutdown"
	"github.com/yanet-platform/ackdrain/internal/utils/workerpool"
	"github.com/yanet-platform/ackdrain/internal/worker"
)

// Trigger tells what started the shutdown of a run.
type Trigger int

const (
	// Completion means a worker finished its work first.
	Completion Trigger = iota + 1
	// Interrupt means the operator interrupted the run.
	Interrupt
)

func (m Trigger) String() string {
	switch m {
	case Completion:
		return "completion"
	case Interrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// Report summarizes a finished run.
type Report struct {
	RunID   runid.RunID
	Trigger Trigger
	// Acks holds worker identifiers in arrival order.
	Acks []workerid.ID
	// Outcomes holds terminal records of the workers in completion order.
	Outcomes []worker.Outcome
}

// Supervisor orchestrates a single run of workers.
type Supervisor struct {
	config   Config
	clock    clock.Clock
	shutdown *shutdown.Shutdown

	// newTask builds the task run for a single entry of the plan.
	newTask func(cfg WorkerConfig, ack *ackchan.Sender[workerid.ID], logger *log.Logger) workerpool.Task[worker.Outcome]

	log *log.Logger
}

// New creates a new supervisor. The shutdown signal it owns is shared with the
// workers of its run, so a supervisor is meant to be run once.
func New(config Config, clock clock.Clock, logger *log.Logger) *Supervisor {
	m := &Supervisor{
		config:   config,
		clock:    clock,
		shutdown: shutdown.New(),
		log:      logger,
	}
	m.newTask = m.newWorker

	return m
}

func (m *Supervisor) newWorker(cfg WorkerConfig, ack *ackchan.Sender[workerid.ID], logger *log.Logger) workerpool.Task[worker.Outcome] {
	return worker.New(cfg.ID, cfg.GetDuration(), ack, m.shutdown, m.clock, logger)
}

// Shutdown triggers the shutdown signal of the run. It is idempotent and may
// be called at any time, including after the run has completed.
func (m *Supervisor) Shutdown() {
	m.shutdown.Do()
}

// Run spawns the workers and blocks until every one of them has either
// finished or acknowledged the shutdown.
//
// Closing interrupt, as well as cancelling ctx, is treated as an operator
// interrupt. A nil interrupt channel is never ready.
func (m *Supervisor) Run(ctx context.Context, interrupt <-chan struct{}) (Report, error) {
	if err := m.config.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid worker plan: %w", err)
	}

	runID := runid.FromContextOrGenerate(ctx)
	runLog := logger.WithRun(m.log, runID)
	report := Report{RunID: runID}

	tx, rx := ackchan.New[workerid.ID]()
	pool := workerpool.New[worker.Outcome](runLog)

	for _, cfg := range m.config.Workers {
		ack, err := tx.Clone()
		if err != nil {
			// The initial sender is held until every worker is spawned, so
			// this is not expected. Stop whatever has already been started.
			m.shutdown.Do()
			tx.Release()
			return Report{}, fmt.Errorf("failed to clone ack sender for worker %d: %w", cfg.ID, err)
		}

		if !pool.Add(ctx, m.newTask(cfg, ack, runLog)) {
			ack.Release()
		}
	}

	// The supervisor never sends acknowledgments itself. Releasing its sender
	// lets the channel close once every worker has exited.
	tx.Release()

	observe := func(message string, fields ...log.Field) {
		runLog.Info(workerid.Supervisor.Line(message), append(fields, workerid.Supervisor.Field())...)
	}
	received := func(id workerid.ID) {
		report.Acks = append(report.Acks, id)
		observe(fmt.Sprintf("Shutdown ack received from %d", id), log.Uint32("from", uint32(id)))
	}

	// Race the operator interrupt against the first acknowledgment. The
	// receive is bound to a context that the interrupt cancels.
	firstCtx, cancelFirst := context.WithCancel(ctx)
	defer cancelFirst()

	go func() {
		select {
		case <-interrupt:
			cancelFirst()
		case <-firstCtx.Done():
		}
	}()

	id, ok, err := rx.Recv(firstCtx)
	switch {
	case err != nil:
		// Either the interrupt channel fired or the parent context ended.
		report.Trigger = Interrupt
		observe("Interrupt received")
		observe("Shutting down tasks")
		m.shutdown.Do()

	case ok:
		report.Trigger = Completion
		received(id)

	default:
		// Every worker exited without a single acknowledgment, so each of
		// them finished on its own.
		report.Trigger = Completion
	}
	cancelFirst()

	// Drain the rest. There is no timeout here: the loop ends when the last
	// worker releases its sender.
	for {
		id, ok, err := rx.Recv(context.Background())
		if err != nil || !ok {
			break
		}
		received(id)
	}

	switch report.Trigger {
	case Interrupt:
		observe("All tasks have been shut down", log.Int("acks", len(report.Acks)))
	default:
		observe("All tasks have finished", log.Int("acks", len(report.Acks)))
	}

	// All senders are released, so the tasks are past their last step and
	// collecting outcomes does not wait for unfinished work.
	report.Outcomes = pool.Close()

	return report, nil
}
