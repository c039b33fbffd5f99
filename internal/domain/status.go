package domain

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusFailed    BookingStatus = "FAILED"
)

// PENDING is the only state with outgoing edges.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusFailed},
	StatusConfirmed: {},
	StatusFailed:    {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible. Unknown
// states are treated as terminal.
func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// HoldsSeats reports whether a booking in this state owns its seat claim.
func (s BookingStatus) HoldsSeats() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s BookingStatus) String() string { return string(s) }

// Transition validates moving booking id from one state to another.
func Transition(bookingID string, from, to BookingStatus) error {
	if !from.CanTransitionTo(to) {
		return StateConflictError{BookingID: bookingID, From: from, To: to}
	}
	return nil
}
