package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	require.Nil(t, Duration(Event{StartDate: start}))

	days := Duration(Event{StartDate: start, EndDate: start.Add(48 * time.Hour)})
	require.NotNil(t, days)
	require.Equal(t, 2, *days)

	days = Duration(Event{StartDate: start, EndDate: start.Add(49 * time.Hour)})
	require.Equal(t, 3, *days)
}

func TestIsRegistrationOpen(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := Event{Status: StatusRegistrationOpen, RegistrationDeadline: now.Add(time.Minute)}

	require.True(t, IsRegistrationOpen(event, now))
	require.False(t, IsRegistrationOpen(event, now.Add(2*time.Minute)))

	event.Status = StatusPublished
	require.False(t, IsRegistrationOpen(event, now))
}

func TestEventDisplayStatus(t *testing.T) {
	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := Event{Status: StatusPublished, StartDate: start, EndDate: start.Add(24 * time.Hour)}

	require.Equal(t, DisplayUpcoming, EventDisplayStatus(event, start.Add(-time.Hour)))
	require.Equal(t, DisplayOngoing, EventDisplayStatus(event, start))
	require.Equal(t, DisplayOngoing, EventDisplayStatus(event, event.EndDate))
	require.Equal(t, DisplayCompleted, EventDisplayStatus(event, event.EndDate.Add(time.Second)))

	// The stored status is ignored except for cancellation.
	event.Status = StatusCompleted
	require.Equal(t, DisplayUpcoming, EventDisplayStatus(event, start.Add(-time.Hour)))
	event.Status = StatusCancelled
	require.Equal(t, DisplayCancelled, EventDisplayStatus(event, start))
}

func TestClampParticipants(t *testing.T) {
	event := Event{CurrentParticipants: -3}
	ClampParticipants(&event)
	require.Equal(t, 0, event.CurrentParticipants)

	event = Event{CurrentParticipants: 12, MaxParticipants: intPtr(10)}
	ClampParticipants(&event)
	require.Equal(t, 10, event.CurrentParticipants)

	event = Event{CurrentParticipants: 12}
	ClampParticipants(&event)
	require.Equal(t, 12, event.CurrentParticipants)
}

func TestNewViewIncludesDerivedValues(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	event := openEvent(now)

	view := NewView(event, now)

	require.True(t, view.IsRegistrationOpen)
	require.Equal(t, DisplayUpcoming, view.EventStatus)
	require.Equal(t, 1, *view.Duration)
	require.Len(t, NewViews([]Event{event, event}, now), 2)
}
