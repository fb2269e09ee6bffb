package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/hackhub-dev/server/internal/storage"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestOpenAndPing(t *testing.T) {
	_, dbURL := setupPostgres(t)
	ctx := context.Background()

	pool, err := Open(ctx, dbURL, PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	defer pool.Close()

	repo, err := NewRepository(pool)
	require.NoError(t, err)
	require.NoError(t, repo.Ping(ctx))

	_, err = Open(ctx, "://not-a-url", PoolOptions{})
	require.Error(t, err)
}

func TestNewRepositoryRequiresPool(t *testing.T) {
	_, err := NewRepository(nil)
	require.Error(t, err)
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	pool, _ := setupPostgres(t)
	ctx := context.Background()
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	newUser := func(email string) users.User {
		return users.User{
			ID:          ulid.Make().String(),
			FirstName:   "Tx",
			LastName:    "User",
			Email:       email,
			Preferences: users.DefaultPreferences(),
			Role:        auth.RoleMember,
			IsActive:    true,
		}
	}

	errAbort := errors.New("abort")
	err = repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		if _, err := tx.Users().Create(ctx, newUser("rolled@example.com")); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	_, err = repo.Users().GetByEmail(ctx, "rolled@example.com")
	require.ErrorIs(t, err, users.ErrNotFound)

	err = repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		user, err := tx.Users().Create(ctx, newUser("kept@example.com"))
		if err != nil {
			return err
		}
		start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		_, err = tx.Events().Create(ctx, events.Event{
			ID:                   ulid.Make().String(),
			Title:                "Transactional Event",
			Description:          "Created together with its organizer in one transaction.",
			ShortDescription:     "Short description",
			StartDate:            start,
			EndDate:              start.Add(24 * time.Hour),
			RegistrationDeadline: start.Add(-time.Hour),
			Location:             events.Location{Type: events.LocationOnline},
			Categories:           []events.Category{events.CategoryOther},
			Difficulty:           events.DifficultyBeginner,
			Status:               events.StatusDraft,
			Currency:             "USD",
			OrganizerIDs:         []string{user.ID},
			Details:              events.DefaultDetails(),
		})
		return err
	})
	require.NoError(t, err)

	kept, err := repo.Users().GetByEmail(ctx, "kept@example.com")
	require.NoError(t, err)
	total, err := repo.Events().Count(ctx, events.Filters{})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	list, err := repo.Events().Featured(ctx, 5)
	require.NoError(t, err)
	require.Empty(t, list)
	require.Equal(t, "Tx", kept.FirstName)
}

func TestMigrationStateReportsAppliedVersion(t *testing.T) {
	pool, _ := setupPostgres(t)
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	version, dirty, err := repo.MigrationState(context.Background())
	require.NoError(t, err)
	require.False(t, dirty)
	require.Greater(t, version, uint(0))
}

func TestRepositoryEnsureAdminIsIdempotent(t *testing.T) {
	pool, _ := setupPostgres(t)
	ctx := context.Background()
	repo, err := NewRepository(pool)
	require.NoError(t, err)

	admin := users.User{
		ID:           ulid.Make().String(),
		FirstName:    "Boot",
		LastName:     "Strap",
		Email:        "boot@example.com",
		PasswordHash: "hash",
		Preferences:  users.DefaultPreferences(),
	}

	created, isNew, err := repo.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, auth.RoleAdmin, created.Role)

	admin.ID = ulid.Make().String()
	again, isNew, err := repo.EnsureAdmin(ctx, admin)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, created.ID, again.ID)
}
