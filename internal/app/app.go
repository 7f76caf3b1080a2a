// Package app wires the supervisor together with its ambient dependencies.
package app

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	log "go.uber.org/zap"

	"github.com/yanet-platform/ackdrain/internal/monitoring/logger"
	"github.com/yanet-platform/ackdrain/internal/supervisor"
	"github.com/yanet-platform/ackdrain/internal/types/runid"
)

// App runs a single supervised batch of workers.
type App struct {
	config     Config
	supervisor *supervisor.Supervisor

	logger *log.Logger
}

// New creates a new application instance. The clock drives every worker
// timer; production code passes [clock.New].
func New(config Config, clock clock.Clock, logger *log.Logger) *App {
	return &App{
		config:     config,
		supervisor: supervisor.New(config.Supervisor, clock, logger),
		logger:     logger,
	}
}

// Run executes the run to completion. Closing interrupt requests an operator
// shutdown. Both ways of ending a run are successful, only an invalid worker
// plan is reported as an error.
func (m *App) Run(ctx context.Context, interrupt <-chan struct{}) error {
	runID := runid.Generate()
	ctx = runid.NewContext(ctx, runID)

	runLogger := logger.WithRun(m.logger, runID)
	runLogger.Info(
		"starting run",
		log.Int("workers", len(m.config.Supervisor.Workers)),
	)

	report, err := m.supervisor.Run(ctx, interrupt)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	runLogger.Info(
		"run completed",
		log.Stringer("trigger", report.Trigger),
		log.Int("acks", len(report.Acks)),
		log.Int("workers", len(report.Outcomes)),
	)

	return nil
}

// Shutdown triggers the shutdown signal of the run.
func (m *App) Shutdown() {
	m.supervisor.Shutdown()
}
