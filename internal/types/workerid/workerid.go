// Package workerid defines identifiers of the tasks taking part in a
// coordinated shutdown.
package workerid

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// ID identifies a worker for logging and acknowledgment correlation.
type ID uint32

// Supervisor is reserved for the supervisor's own lines and is never assigned
// to a worker.
const Supervisor ID = 0

// String implements the fmt.Stringer interface.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Line renders an observation in the "<id>: <message>." form.
func (id ID) Line(message string) string {
	return fmt.Sprintf("%d: %s.", id, message)
}

// Field returns the zap field carrying the identifier.
func (id ID) Field() zap.Field {
	return zap.Uint32("id", uint32(id))
}
