package utility

import (
	"github.com/google/uuid"
)

// TraceID correlates the events produced while processing one inbound event.
type TraceID = uuid.UUID

func NewTraceID() TraceID {
	return uuid.Must(uuid.NewV7())
}
