package bookings

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("booking not found")
	ErrForbidden            = errors.New("booking belongs to another user")
	ErrScreeningNotBookable = errors.New("screening is not open for booking")
	ErrTooManySeats         = errors.New("too many seats requested")
)

// InvalidTransitionError reports an attempt to move a booking along a
// state machine edge that does not exist.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}

// IsInvalidTransition extracts transition detail from an error chain.
func IsInvalidTransition(err error) (*InvalidTransitionError, bool) {
	var ite *InvalidTransitionError
	if errors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}
