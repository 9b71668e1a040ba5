package bitwalk

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by New when a configuration value is
	// out of range.
	ErrInvalidConfig = errors.New("bitwalk: invalid config")

	// ErrNilFactory is returned by New when no SurfaceFactory is given.
	ErrNilFactory = errors.New("bitwalk: nil surface factory")

	// ErrHalted is returned by Append once a pass has failed. The engine
	// does not recover; discard it and construct a new one.
	ErrHalted = errors.New("bitwalk: engine halted")
)

// TileError records a failure of the host's surface capabilities while
// creating or drawing into a tile.
type TileError struct {
	ID  TileID
	Op  string // "create" or "draw"
	Err error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("bitwalk: %s tile %v: %v", e.Op, e.ID, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }

// haltedError wraps the failure that halted the engine so that callers can
// match both ErrHalted and the original cause.
type haltedError struct {
	cause error
}

func (e *haltedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrHalted, e.cause)
}

func (e *haltedError) Unwrap() []error {
	return []error{ErrHalted, e.cause}
}
