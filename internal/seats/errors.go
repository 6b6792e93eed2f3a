package seats

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrHoldNotFound is returned when a hold token does not exist,
	// typically because it was already released or reclaimed.
	ErrHoldNotFound = errors.New("hold not found")

	// ErrHoldExpired is returned by Commit when the hold's TTL has
	// passed, even if no one has reclaimed the seats yet.
	ErrHoldExpired = errors.New("hold expired")

	// ErrNotFound is returned when a seat or screening is unknown
	// to the ledger.
	ErrNotFound = errors.New("seat not found")
)

// UnavailableError reports a failed hold attempt along with the seats
// that caused the conflict. No seats are held when it is returned.
type UnavailableError struct {
	ConflictingSeats []uuid.UUID
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%d seat(s) unavailable", len(e.ConflictingSeats))
}

// IsUnavailable extracts the conflict detail from an error chain.
func IsUnavailable(err error) (*UnavailableError, bool) {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
