package users

import (
	"context"
	"time"

	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/auth"
)

// PreferencesUpdate names the preference paths to overwrite; nil paths are kept.
type PreferencesUpdate struct {
	Theme              *Theme
	EmailNotifications *bool
	PushNotifications  *bool
}

// SearchParams filters the admin user search. Only active users are returned.
type SearchParams struct {
	Query string
	Role  auth.Role
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user User) (*User, error)
	// UpdateProfile writes the profile fields of user. Preferences follow prefs,
	// not user.Preferences, so paths absent from prefs keep their stored value.
	UpdateProfile(ctx context.Context, user User, prefs PreferencesUpdate) (*User, error)
	UpdatePreferences(ctx context.Context, id string, update PreferencesUpdate) (*User, error)
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Search(ctx context.Context, params SearchParams, page pagination.Page) ([]User, error)
	CountSearch(ctx context.Context, params SearchParams) (int, error)
}
