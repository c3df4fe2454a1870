package utility

import (
	"github.com/google/uuid"
)

// ExecutionID uniquely identifies a single execution (fill). Version 7 uuids
// keep the ids time-sortable, which makes replayed event streams easier to audit.
type ExecutionID = uuid.UUID

func NewExecutionID() ExecutionID {
	return uuid.Must(uuid.NewV7())
}

func ParseExecutionID(s string) (ExecutionID, error) {
	return uuid.Parse(s)
}
