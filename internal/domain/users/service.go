package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/ids"
	"github.com/hackhub-dev/server/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Service implements self-service profile operations, signup and login.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// Get returns the full user record, including inactive users.
func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// IsActive reports whether userID names an existing, active account.
func (s *Service) IsActive(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsActive, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return user.Profile(), nil
}

// UpdateProfile applies a sparse update and returns the new public projection.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p ProfilePatch) (Profile, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	merged, err := p.Apply(*current)
	if err != nil {
		return Profile{}, err
	}

	var prefs PreferencesUpdate
	if p.Preferences != nil {
		prefs = p.Preferences.Update()
	}
	updated, err := s.repo.UpdateProfile(ctx, merged, prefs)
	if err != nil {
		return Profile{}, err
	}
	return updated.Profile(), nil
}

func (s *Service) GetPreferences(ctx context.Context, userID string) (Preferences, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	return user.Preferences, nil
}

// UpdatePreferences overwrites only the preference paths present in p.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, p PreferencesPatch) (Preferences, error) {
	if p.Theme.Set {
		if err := validatePreferences(Preferences{Theme: p.Theme.Value}); err != nil {
			return Preferences{}, err
		}
	}
	if p.Empty() {
		return s.GetPreferences(ctx, userID)
	}

	user, err := s.repo.UpdatePreferences(ctx, userID, p.Update())
	if err != nil {
		return Preferences{}, err
	}
	return user.Preferences, nil
}

// Deactivate soft deletes the account. Users are never removed.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	if err := s.repo.SetActive(ctx, userID, false); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Msg("account deactivated")
	return nil
}

// Stats reports participation counters. Registrations are not tracked per user,
// so the event counters are zero.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		MemberSince: user.CreatedAt,
		LastLogin:   user.LastLogin,
	}, nil
}

type SearchResult struct {
	Users      []Profile
	Pagination pagination.Meta
}

// Search lists active users whose name or email contains query, newest first.
func (s *Service) Search(ctx context.Context, caller auth.Principal, params SearchParams, page pagination.Page) (SearchResult, error) {
	if !caller.IsAdmin() {
		return SearchResult{}, ErrForbidden
	}
	params.Query = strings.TrimSpace(params.Query)

	var (
		list  []User
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.repo.Search(gctx, params, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountSearch(gctx, params)
		return err
	})
	if err := g.Wait(); err != nil {
		return SearchResult{}, err
	}

	profiles := make([]Profile, 0, len(list))
	for _, u := range list {
		profiles = append(profiles, u.Profile())
	}
	return SearchResult{Users: profiles, Pagination: pagination.NewMeta(page, total)}, nil
}

// Signup creates a member account.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*User, error) {
	input.normalize()
	if err := validation.Struct(input, signupMessages); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		ID:           id,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Preferences:  DefaultPreferences(),
		Role:         auth.RoleMember,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user signed up")
	return user, nil
}

// Authenticate checks credentials and records the login time. Unknown emails,
// wrong passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string, now time.Time) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	at := now.UTC()
	user.LastLogin = &at
	return user, nil
}
