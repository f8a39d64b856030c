package pipeline

import (
	"errors"
	"fmt"
	"time"
)

// Outcome is the typed result of a board mutation. Only Applied changes the
// collection and schedules a persist; none of the others is an error.
type Outcome int

const (
	Applied Outcome = iota
	NotFound
	Terminal // Advance on NEGOTIATION or a closed stage
	Declined // Remove refused by the confirmer
	Invalid  // Update with a stage outside the enumeration
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NotFound:
		return "not_found"
	case Terminal:
		return "terminal"
	case Declined:
		return "declined"
	case Invalid:
		return "invalid"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// PersistResult reports one write of a full-collection snapshot.
// Seq is the mutation sequence number the snapshot reflects.
type PersistResult struct {
	Seq      uint64
	Count    int
	Err      error
	Duration time.Duration
}

// PersistError is a failed full-collection write. The in-memory board is not
// rolled back, so local and remote state may differ until the next
// successful persist or reload.
type PersistError struct {
	Seq uint64
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist snapshot %d: %v", e.Seq, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

var (
	// ErrClosed is returned by Flush and Persist after Close.
	ErrClosed = errors.New("pipeline: board closed")
	// ErrNoConfirmer is returned by Remove when called without a confirmation gate.
	ErrNoConfirmer = errors.New("pipeline: remove requires a confirmer")
)
