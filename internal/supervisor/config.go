package supervisor

import (
	"errors"
	"fmt"
	"time"

	"github.com/yanet-platform/ackdrain/internal/types/workerid"
)

var (
	// ErrNoWorkers is returned for a plan without workers.
	ErrNoWorkers = errors.New("no workers configured")
	// ErrReservedID is returned when a worker uses [workerid.Supervisor].
	ErrReservedID = errors.New("worker id is reserved for the supervisor")
	// ErrDuplicateID is returned when two workers share an identifier.
	ErrDuplicateID = errors.New("duplicate worker id")
	// ErrInvalidDuration is returned for a zero or negative work duration.
	ErrInvalidDuration = errors.New("worker duration must be positive")
)

// WorkerConfig describes a single worker of the plan.
type WorkerConfig struct {
	// ID of the worker. Must be unique and not equal to [workerid.Supervisor].
	ID workerid.ID `yaml:"id" toml:"id"`
	// Duration of the work in seconds.
	Duration float64 `yaml:"duration" toml:"duration"`
}

// GetDuration returns the work duration.
func (m WorkerConfig) GetDuration() time.Duration {
	return time.Duration(m.Duration * float64(time.Second))
}

// Config is the fixed worker plan of a supervisor run.
type Config struct {
	Workers []WorkerConfig `yaml:"workers" toml:"workers"`
}

// DefaultConfig returns the built-in plan: one short worker that finishes
// first and two long ones that get cancelled.
func DefaultConfig() Config {
	return Config{
		Workers: []WorkerConfig{
			{ID: 1, Duration: 3},
			{ID: 2, Duration: 10},
			{ID: 3, Duration: 10},
		},
	}
}

// Validate checks that the plan can be run.
func (m Config) Validate() error {
	if len(m.Workers) == 0 {
		return ErrNoWorkers
	}

	seen := make(map[workerid.ID]struct{}, len(m.Workers))
	for _, w := range m.Workers {
		if w.ID == workerid.Supervisor {
			return fmt.Errorf("%w: %d", ErrReservedID, w.ID)
		}
		if _, exists := seen[w.ID]; exists {
			return fmt.Errorf("%w: %d", ErrDuplicateID, w.ID)
		}
		seen[w.ID] = struct{}{}

		if w.GetDuration() <= 0 {
			return fmt.Errorf("%w: worker %d has %v", ErrInvalidDuration, w.ID, w.Duration)
		}
	}

	return nil
}
