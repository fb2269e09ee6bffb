package events

import (
	"context"
	"errors"
	"time"

	"github.com/hackhub-dev/server/internal/api/pagination"
)

// ErrNotAdmitted is returned by Repository.Register when the conditional increment
// matched no row because one of the admission predicates no longer held.
var ErrNotAdmitted = errors.New("registration not admitted")

type Repository interface {
	List(ctx context.Context, filters Filters, page pagination.Page) ([]Event, error)
	Count(ctx context.Context, filters Filters) (int, error)
	Featured(ctx context.Context, limit int) ([]Event, error)
	Upcoming(ctx context.Context, limit int, now time.Time) ([]Event, error)
	Search(ctx context.Context, query string, filters SearchFilters, limit int) ([]Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	IncrementViews(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, event Event) (*Event, error)
	// Update writes the editable columns. currentParticipants is only written when
	// setParticipants is true; otherwise the stored count is kept and clamped to the
	// new maxParticipants.
	Update(ctx context.Context, event Event, setParticipants bool) (*Event, error)
	Delete(ctx context.Context, id string) error
	// Register increments currentParticipants and statistics.registrations only if the
	// event is open, the deadline has not passed at now and capacity remains.
	Register(ctx context.Context, id string, now time.Time) (*Event, error)
}

// Notifier is told about admitted registrations. Failures never undo a registration.
type Notifier interface {
	RegistrationConfirmed(ctx context.Context, userID string, event Event) error
}
