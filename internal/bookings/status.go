package bookings

// Status is the lifecycle state of a booking.
//
// PENDING is the only non-terminal origin state: it can move to
// CONFIRMED, CANCELLED or EXPIRED. A CONFIRMED booking can still be
// cancelled (the refund path). CANCELLED and EXPIRED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to target is a legal
// state machine edge.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled || target == StatusExpired
	case StatusConfirmed:
		return target == StatusCancelled
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// CanBeCancelled reports whether a cancel request is meaningful in
// this state. Cancelling an already cancelled booking is a no-op
// handled by the service, not a transition.
func (s Status) CanBeCancelled() bool {
	return s == StatusPending || s == StatusConfirmed
}
