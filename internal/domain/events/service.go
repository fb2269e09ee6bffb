package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/ids"
	"github.com/hackhub-dev/server/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFeaturedLimit = 5
	DefaultUpcomingLimit = 10
	DefaultSearchLimit   = 20

	notifyTimeout = 5 * time.Second
)

type Service struct {
	repo     Repository
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

type ListResult struct {
	Events     []Event
	Pagination pagination.Meta
}

// List returns one page of events matching filters together with the total match count.
func (s *Service) List(ctx context.Context, filters Filters, page pagination.Page) (ListResult, error) {
	var (
		list  []Event
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.repo.List(gctx, filters, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}

	if list == nil {
		list = []Event{}
	}
	return ListResult{Events: list, Pagination: pagination.NewMeta(page, total)}, nil
}

func (s *Service) Featured(ctx context.Context, limit int) ([]Event, error) {
	limit = pagination.ClampLimit(limit, DefaultFeaturedLimit, pagination.Events.MaxLimit)
	return s.repo.Featured(ctx, limit)
}

func (s *Service) Upcoming(ctx context.Context, limit int, now time.Time) ([]Event, error) {
	limit = pagination.ClampLimit(limit, DefaultUpcomingLimit, pagination.Events.MaxLimit)
	return s.repo.Upcoming(ctx, limit, now)
}

func (s *Service) Search(ctx context.Context, query string, filters SearchFilters, limit int) ([]Event, error) {
	if query == "" {
		return nil, ErrSearchQueryRequired
	}
	limit = pagination.ClampLimit(limit, DefaultSearchLimit, pagination.Events.MaxLimit)
	return s.repo.Search(ctx, query, filters, limit)
}

// Get returns an event and counts the read as a view.
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	id, err := validateID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.IncrementViews(ctx, id)
}

// Create stores a new event with the caller as its first organizer.
func (s *Service) Create(ctx context.Context, caller auth.Principal, input CreateInput) (*Event, error) {
	if !caller.CanManageEvents() {
		return nil, ErrForbidden
	}

	event, err := NewEvent(input)
	if err != nil {
		return nil, err
	}
	event.ID, err = ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	event.OrganizerIDs = []string{caller.UserID}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("event_id", created.ID).
		Str("user_id", caller.UserID).
		Msg("event created")
	return created, nil
}

// Update applies a sparse update. Only organizers and admins may edit an event.
func (s *Service) Update(ctx context.Context, caller auth.Principal, id string, input UpdateInput) (*Event, error) {
	id, err := validateID(id)
	if err != nil {
		return nil, err
	}
	if !caller.CanManageEvents() {
		return nil, ErrForbidden
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !current.IsOrganizer(caller.UserID) {
		return nil, ErrForbidden
	}

	merged, err := input.Apply(*current)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, merged, input.CurrentParticipants.Set)
}

func (s *Service) Delete(ctx context.Context, caller auth.Principal, id string) error {
	id, err := validateID(id)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("event_id", id).
		Str("user_id", caller.UserID).
		Msg("event deleted")
	return nil
}

// Register admits the caller to an event. On rejection nothing is written and the
// error is a *RegistrationError naming the reason.
func (s *Service) Register(ctx context.Context, caller auth.Principal, id string, now time.Time) (*Event, error) {
	id, err := validateID(id)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckRegistration(*event, now); err != nil {
		return nil, err
	}

	updated, err := s.admit(ctx, id, now)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, caller.UserID, *updated)
	return updated, nil
}

// admit runs the conditional increment. When it is refused the event is re-read
// to name the reason; if the fresh copy looks admissible again (an edit reopened it
// in between) the increment is tried once more.
func (s *Service) admit(ctx context.Context, id string, now time.Time) (*Event, error) {
	for attempt := 0; ; attempt++ {
		updated, err := s.repo.Register(ctx, id, now)
		if !errors.Is(err, ErrNotAdmitted) {
			return updated, err
		}

		latest, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if reason := CheckRegistration(*latest, now); reason != nil {
			return nil, reason
		}
		if attempt > 0 {
			s.logger.Warn().Str("event_id", id).Msg("registration refused twice for an admissible event")
			return nil, ErrRegistrationConflict
		}
	}
}

func (s *Service) notify(ctx context.Context, userID string, event Event) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.RegistrationConfirmed(ctx, userID, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_id", event.ID).
			Str("user_id", userID).
			Msg("registration confirmation failed")
	}
}

func validateID(id string) (string, error) {
	id = ids.Normalize(id)
	if err := ids.ValidateULID(id); err != nil {
		return "", validation.Errors{{Field: "id", Message: "Invalid event ID"}}
	}
	return id, nil
}
