package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the simulation core. All of them describe
// programmer or configuration mistakes and are never retried.
var (
	// ErrConfiguration reports invalid dimensions, radii or budgets.
	ErrConfiguration = errors.New("configuration error")
	// ErrLocationOccupied reports a registration on a non-empty cell.
	ErrLocationOccupied = errors.New("location occupied")
	// ErrMalformedInput reports a distance matrix the tour solver cannot use.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvariantViolation reports arguments that break a ledger or
	// clustering invariant (nil peripherals, NaN or negative amounts).
	ErrInvariantViolation = errors.New("invariant violation")
)

// LocationOccupiedError is returned when an entity is registered on a cell
// that already holds one. Callers placing entities at random locations can
// retry elsewhere.
type LocationOccupiedError struct {
	Location Location
	Occupant EntityID
}

func (e *LocationOccupiedError) Error() string {
	return fmt.Sprintf("location (%d,%d) occupied by entity %d", e.Location.X, e.Location.Y, e.Occupant)
}

// Unwrap allows errors.Is(err, ErrLocationOccupied).
func (e *LocationOccupiedError) Unwrap() error { return ErrLocationOccupied }

// Configurationf wraps ErrConfiguration with a formatted message.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// Malformedf wraps ErrMalformedInput with a formatted message.
func Malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// Invariantf wraps ErrInvariantViolation with a formatted message.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
