package ledger

import (
	"errors"
	"fmt"

	"github.com/helioquant/helios/pkg/common"
)

var (
	ErrDuplicateFill      = errors.New("execution id already applied")
	ErrInstrumentMismatch = errors.New("fill instrument does not match position")
)

// IntegrityError marks a fatal accounting violation. The offending Apply call
// leaves the position untouched; callers must not continue feeding fills.
type IntegrityError struct {
	PositionID common.PositionID
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("position %s: %v", e.PositionID, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }
