// Package runid provides identifiers correlating every line emitted during a
// single supervisor run.
package runid

import (
	"context"

	"github.com/google/uuid"
)

// RunID is a unique identifier of a supervisor run.
type RunID string

// contextKey is an unexported type for context keys defined in this package.
type contextKey int

// runIDContextKey is the key for [RunID] in Contexts. Clients use
// runid.NewContext and runid.FromContext instead of using this key directly.
var runIDContextKey contextKey

// Generate generates a new run ID.
func Generate() RunID {
	return RunID(uuid.New().String())
}

// FromContext returns the RunID value stored in ctx, if any.
func FromContext(ctx context.Context) (RunID, bool) {
	id, exists := ctx.Value(runIDContextKey).(RunID)
	return id, exists
}

// FromContextOrGenerate returns the RunID stored in ctx or a freshly generated
// one.
func FromContextOrGenerate(ctx context.Context) RunID {
	if id, exists := FromContext(ctx); exists {
		return id
	}
	return Generate()
}

// NewContext returns a new Context that carries value runID.
func NewContext(ctx context.Context, runID RunID) context.Context {
	return context.WithValue(ctx, runIDContextKey, runID)
}
