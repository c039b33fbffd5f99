package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind tags every error the engine returns so transports can map it
// without inspecting messages.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation_error"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindStateConflict ErrorKind = "state_conflict"
	KindTransient     ErrorKind = "transient_error"
	KindInternal      ErrorKind = "internal_error"
)

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports a missing vehicle, seat or booking. SeatIDs lists
// the requested seats that could not be located.
type NotFoundError struct {
	Resource string
	ID       string
	SeatIDs  []string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case len(e.SeatIDs) > 0:
		return fmt.Sprintf("%s not found: %s", e.Resource, strings.Join(e.SeatIDs, ","))
	case e.ID != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	default:
		return fmt.Sprintf("%s not found", e.Resource)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports seats that are already claimed by a live booking.
type ConflictError struct {
	Resource string
	Msg      string
	SeatIDs  []string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// StateConflictError is returned for an illegal booking status transition.
// Callers must not retry it.
type StateConflictError struct {
	BookingID string
	From      BookingStatus
	To        BookingStatus
}

func (e StateConflictError) Error() string {
	if e.BookingID == "" {
		return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
	}
	return fmt.Sprintf("cannot move booking %s from %s to %s", e.BookingID, e.From, e.To)
}

// TransientError wraps timeouts, deadlocks and lost connections. The whole
// operation was rolled back and is safe to retry.
type TransientError struct {
	Op  string
	Err error
}

func (e TransientError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: temporary storage failure", e.Op)
	}
	return "temporary storage failure"
}

func (e TransientError) Unwrap() error { return e.Err }

// InternalError is a failure the caller cannot fix by retrying. BookingID is
// set when a booking was written before the failure.
type InternalError struct {
	Msg       string
	BookingID string
	Err       error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsStateConflict(err error) bool {
	var target StateConflictError
	return errors.As(err, &target)
}

func IsTransient(err error) bool {
	var target TransientError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// KindOf returns the tag of the outermost typed error in err's chain.
// Untyped errors are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch e.(type) {
		case ValidationError:
			return KindValidation
		case NotFoundError:
			return KindNotFound
		case ConflictError:
			return KindConflict
		case StateConflictError:
			return KindStateConflict
		case TransientError:
			return KindTransient
		case InternalError:
			return KindInternal
		}
	}
	switch {
	case IsValidation(err):
		return KindValidation
	case IsNotFound(err):
		return KindNotFound
	case IsConflict(err):
		return KindConflict
	case IsStateConflict(err):
		return KindStateConflict
	case IsTransient(err):
		return KindTransient
	default:
		return KindInternal
	}
}
