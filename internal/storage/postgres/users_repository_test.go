package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &UserRepository{pool: pool}

	created := insertUser(t, ctx, repo, "Ada", "Lovelace", "ada@example.com", auth.RoleMember)
	require.Equal(t, users.ThemeAuto, created.Preferences.Theme)
	require.True(t, created.Preferences.Notifications.Email)

	_, err := repo.Create(ctx, users.User{
		ID:          ulid.Make().String(),
		FirstName:   "Other",
		LastName:    "Ada",
		Email:       "ADA@example.com",
		Preferences: users.DefaultPreferences(),
		Role:        auth.RoleMember,
		IsActive:    true,
	})
	require.ErrorIs(t, err, users.ErrEmailTaken)

	found, err := repo.GetByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = repo.GetByID(ctx, ulid.Make().String())
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestUserRepositoryUpdatePreferencesKeepsUnsetPaths(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &UserRepository{pool: pool}

	user := insertUser(t, ctx, repo, "Ada", "Lovelace", "ada@example.com", auth.RoleMember)

	push := true
	updated, err := repo.UpdatePreferences(ctx, user.ID, users.PreferencesUpdate{PushNotifications: &push})
	require.NoError(t, err)
	require.Equal(t, users.ThemeAuto, updated.Preferences.Theme)
	require.True(t, updated.Preferences.Notifications.Email)
	require.True(t, updated.Preferences.Notifications.Push)

	dark := users.ThemeDark
	updated, err = repo.UpdatePreferences(ctx, user.ID, users.PreferencesUpdate{Theme: &dark})
	require.NoError(t, err)
	require.Equal(t, users.ThemeDark, updated.Preferences.Theme)
	require.True(t, updated.Preferences.Notifications.Push)

	_, err = repo.UpdatePreferences(ctx, ulid.Make().String(), users.PreferencesUpdate{Theme: &dark})
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestUserRepositoryUpdateProfileAndLifecycle(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &UserRepository{pool: pool}

	user := insertUser(t, ctx, repo, "Ada", "Lovelace", "ada@example.com", auth.RoleMember)
	user.Bio = "Analyst"
	user.SocialLinks.GitHub = "https://github.com/ada"

	dark := users.ThemeDark
	_, err := repo.UpdatePreferences(ctx, user.ID, users.PreferencesUpdate{Theme: &dark})
	require.NoError(t, err)

	// user still carries the theme read before the preferences write.
	updated, err := repo.UpdateProfile(ctx, *user, users.PreferencesUpdate{})
	require.NoError(t, err)
	require.Equal(t, "Analyst", updated.Bio)
	require.Equal(t, "https://github.com/ada", updated.SocialLinks.GitHub)
	require.Equal(t, "hash", updated.PasswordHash)
	require.Equal(t, users.ThemeDark, updated.Preferences.Theme)

	off := false
	updated, err = repo.UpdateProfile(ctx, *updated, users.PreferencesUpdate{EmailNotifications: &off})
	require.NoError(t, err)
	require.False(t, updated.Preferences.Notifications.Email)
	require.Equal(t, users.ThemeDark, updated.Preferences.Theme)

	at := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastLogin(ctx, user.ID, at))
	require.NoError(t, repo.SetActive(ctx, user.ID, false))

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsActive)
	require.NotNil(t, reloaded.LastLogin)
	require.True(t, at.Equal(*reloaded.LastLogin))

	require.ErrorIs(t, repo.SetActive(ctx, ulid.Make().String(), true), users.ErrNotFound)
}

func TestUserRepositorySearch(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &UserRepository{pool: pool}

	insertUser(t, ctx, repo, "Ada", "Lovelace", "ada@example.com", auth.RoleMember)
	insertUser(t, ctx, repo, "Adam", "Smith", "adam@example.com", auth.RoleModerator)
	insertUser(t, ctx, repo, "Percent", "User", "100%club@example.com", auth.RoleMember)
	inactive := insertUser(t, ctx, repo, "Adaline", "Bowman", "adaline@example.com", auth.RoleMember)
	require.NoError(t, repo.SetActive(ctx, inactive.ID, false))

	page := pagination.Page{Number: 1, Limit: 10}

	found, err := repo.Search(ctx, users.SearchParams{Query: "ada"}, page)
	require.NoError(t, err)
	require.Len(t, found, 2)

	total, err := repo.CountSearch(ctx, users.SearchParams{Query: "ada"})
	require.NoError(t, err)
	require.Equal(t, 2, total)

	found, err = repo.Search(ctx, users.SearchParams{Query: "ada", Role: auth.RoleModerator}, page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Adam", found[0].FirstName)

	found, err = repo.Search(ctx, users.SearchParams{Query: "%"}, page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Percent", found[0].FirstName)

	found, err = repo.Search(ctx, users.SearchParams{}, pagination.Page{Number: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, found, 1)
}

func TestUserRepositoryEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &UserRepository{pool: pool}

	admin := users.User{
		ID:           ulid.Make().String(),
		FirstName:    "Root",
		LastName:     "Admin",
		Email:        "root@example.com",
		PasswordHash: "hash",
		Preferences:  users.DefaultPreferences(),
	}

	created, isNew, err := repo.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, auth.RoleAdmin, created.Role)

	again, isNew, err := repo.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, created.ID, again.ID)

	member := insertUser(t, ctx, repo, "Later", "Admin", "later@example.com", auth.RoleMember)
	admin.ID = ulid.Make().String()
	admin.Email = "later@example.com"
	promoted, isNew, err := repo.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, member.ID, promoted.ID)
	require.Equal(t, auth.RoleAdmin, promoted.Role)
}
