package events

import (
	"math"
	"time"
)

type DisplayStatus string

const (
	DisplayCancelled DisplayStatus = "cancelled"
	DisplayUpcoming  DisplayStatus = "upcoming"
	DisplayOngoing   DisplayStatus = "ongoing"
	DisplayCompleted DisplayStatus = "completed"
)

// Duration returns the length of the event in whole days, rounded up.
// It is nil when either date is unset.
func Duration(e Event) *int {
	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return nil
	}
	days := int(math.Ceil(e.EndDate.Sub(e.StartDate).Hours() / 24))
	return &days
}

// IsRegistrationOpen reports whether the event accepts registrations at now,
// ignoring capacity.
func IsRegistrationOpen(e Event, now time.Time) bool {
	return e.Status == StatusRegistrationOpen && !now.After(e.RegistrationDeadline)
}

// EventDisplayStatus compares now with the date range. Only cancellation in the
// stored status changes the outcome.
func EventDisplayStatus(e Event, now time.Time) DisplayStatus {
	switch {
	case e.Status == StatusCancelled:
		return DisplayCancelled
	case now.Before(e.StartDate):
		return DisplayUpcoming
	case !now.After(e.EndDate):
		return DisplayOngoing
	default:
		return DisplayCompleted
	}
}

// ClampParticipants keeps currentParticipants within [0, maxParticipants].
func ClampParticipants(e *Event) {
	if e.CurrentParticipants < 0 {
		e.CurrentParticipants = 0
	}
	if e.MaxParticipants != nil && e.CurrentParticipants > *e.MaxParticipants {
		e.CurrentParticipants = *e.MaxParticipants
	}
}

// View is the JSON representation of an event including its derived values.
type View struct {
	Event
	Duration           *int          `json:"duration"`
	IsRegistrationOpen bool          `json:"isRegistrationOpen"`
	EventStatus        DisplayStatus `json:"eventStatus"`
}

func NewView(e Event, now time.Time) View {
	return View{
		Event:              e,
		Duration:           Duration(e),
		IsRegistrationOpen: IsRegistrationOpen(e, now),
		EventStatus:        EventDisplayStatus(e, now),
	}
}

func NewViews(list []Event, now time.Time) []View {
	views := make([]View, 0, len(list))
	for _, e := range list {
		views = append(views, NewView(e, now))
	}
	return views
}
