package events

import "time"

// CheckRegistration decides whether a registration may be admitted at now.
// The reasons are checked in order: status, deadline, capacity.
func CheckRegistration(e Event, now time.Time) error {
	if e.Status != StatusRegistrationOpen {
		return ErrRegistrationNotOpen
	}
	if now.After(e.RegistrationDeadline) {
		return ErrDeadlinePassed
	}
	if e.MaxParticipants != nil && e.CurrentParticipants >= *e.MaxParticipants {
		return ErrEventFull
	}
	return nil
}
