package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) queryer() queryer {
	return pick(r.pool, r.tx)
}

const userColumns = `
id, first_name, last_name, email, password_hash, bio,
github_url, linkedin_url, twitter_url, website_url,
theme, notify_email, notify_push, role, is_active, last_login, created_at, updated_at`

// searchFilters matches active users; $1 is an escaped ILIKE fragment, $2 an optional role.
const searchFilters = `
 WHERE is_active
   AND ($1 = '' OR first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
   AND ($2 = '' OR role = $2)`

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		u         users.User
		theme     string
		role      string
		lastLogin pgtype.Timestamptz
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.Bio,
		&u.SocialLinks.GitHub,
		&u.SocialLinks.LinkedIn,
		&u.SocialLinks.Twitter,
		&u.SocialLinks.Website,
		&theme,
		&u.Preferences.Notifications.Email,
		&u.Preferences.Notifications.Push,
		&role,
		&u.IsActive,
		&lastLogin,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	u.Preferences.Theme = users.Theme(theme)
	u.Role = auth.NormalizeRole(role)
	if lastLogin.Valid {
		at := lastLogin.Time.UTC()
		u.LastLogin = &at
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.Time.UTC()
	}
	if updatedAt.Valid {
		u.UpdatedAt = updatedAt.Time.UTC()
	}
	return &u, nil
}

func scanOneUser(row pgx.Row, op string) (*users.User, error) {
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanOneUser(row, "get user")
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanOneUser(row, "get user by email")
}

func (r *UserRepository) Create(ctx context.Context, u users.User) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO users (
  id, first_name, last_name, email, password_hash, bio,
  github_url, linkedin_url, twitter_url, website_url,
  theme, notify_email, notify_push, role, is_active
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING `+userColumns,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		u.Bio,
		u.SocialLinks.GitHub,
		u.SocialLinks.LinkedIn,
		u.SocialLinks.Twitter,
		u.SocialLinks.Website,
		string(u.Preferences.Theme),
		u.Preferences.Notifications.Email,
		u.Preferences.Notifications.Push,
		string(u.Role),
		u.IsActive,
	)
	user, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, users.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateProfile writes the self-service fields of a user. Preference columns are
// only overwritten for the non-nil paths of prefs.
func (r *UserRepository) UpdateProfile(ctx context.Context, u users.User, prefs users.PreferencesUpdate) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE users SET
  first_name = $2, last_name = $3, bio = $4,
  github_url = $5, linkedin_url = $6, twitter_url = $7, website_url = $8,
  theme = coalesce($9, theme),
  notify_email = coalesce($10, notify_email),
  notify_push = coalesce($11, notify_push),
  updated_at = now()
WHERE id = $1
RETURNING `+userColumns,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Bio,
		u.SocialLinks.GitHub,
		u.SocialLinks.LinkedIn,
		u.SocialLinks.Twitter,
		u.SocialLinks.Website,
		themeArg(prefs.Theme),
		prefs.EmailNotifications,
		prefs.PushNotifications,
	)
	return scanOneUser(row, "update user profile")
}

// UpdatePreferences overwrites only the non-nil preference paths.
func (r *UserRepository) UpdatePreferences(ctx context.Context, id string, update users.PreferencesUpdate) (*users.User, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE users SET
  theme = coalesce($2, theme),
  notify_email = coalesce($3, notify_email),
  notify_push = coalesce($4, notify_push),
  updated_at = now()
WHERE id = $1
RETURNING `+userColumns, id, themeArg(update.Theme), update.EmailNotifications, update.PushNotifications)
	return scanOneUser(row, "update user preferences")
}

func themeArg(theme *users.Theme) *string {
	if theme == nil {
		return nil
	}
	value := string(*theme)
	return &value
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.queryer().Exec(ctx, `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	if _, err := r.queryer().Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func (r *UserRepository) Search(ctx context.Context, params users.SearchParams, page pagination.Page) ([]users.User, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+userColumns+`
  FROM users`+searchFilters+`
 ORDER BY created_at DESC, id DESC
 LIMIT $3 OFFSET $4`, escapeILIKEPattern(params.Query), string(params.Role), page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	items := []users.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan users: %w", err)
		}
		items = append(items, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return items, nil
}

func (r *UserRepository) CountSearch(ctx context.Context, params users.SearchParams) (int, error) {
	var total int64
	err := r.queryer().QueryRow(ctx, `SELECT count(*) FROM users`+searchFilters,
		escapeILIKEPattern(params.Query), string(params.Role)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(total), nil
}

// EnsureAdmin creates or promotes the bootstrap administrator identified by email.
func (r *UserRepository) EnsureAdmin(ctx context.Context, u users.User) (*users.User, bool, error) {
	existing, err := r.GetByEmail(ctx, u.Email)
	if err == nil {
		if existing.Role == auth.RoleAdmin && existing.IsActive {
			return existing, false, nil
		}
		row := r.queryer().QueryRow(ctx, `
UPDATE users SET role = 'admin', is_active = true, updated_at = now()
WHERE id = $1
RETURNING `+userColumns, existing.ID)
		promoted, err := scanOneUser(row, "promote admin")
		return promoted, false, err
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, false, err
	}

	u.Role = auth.RoleAdmin
	u.IsActive = true
	created, err := r.Create(ctx, u)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
