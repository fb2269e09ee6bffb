package events

import "errors"

var (
	ErrNotFound            = errors.New("event not found")
	ErrForbidden           = errors.New("not authorized to modify this event")
	ErrSearchQueryRequired = errors.New("search query is required")
)

// Registration rejection reasons. Exactly one is reported when admission is refused.
var (
	ErrRegistrationNotOpen = &RegistrationError{Code: "registration-not-open", Message: "Event registration is not open"}
	ErrDeadlinePassed      = &RegistrationError{Code: "deadline-passed", Message: "Registration deadline has passed"}
	ErrEventFull           = &RegistrationError{Code: "event-full", Message: "Event is full"}

	// ErrRegistrationConflict is reported when the event kept changing under the
	// request. The caller may retry.
	ErrRegistrationConflict = &RegistrationError{Code: "registration-conflict", Message: "Event changed during registration, please try again"}
)

// RegistrationError is a business rule violation that refuses a registration.
type RegistrationError struct {
	Code    string
	Message string
}

func (e *RegistrationError) Error() string {
	return e.Message
}
