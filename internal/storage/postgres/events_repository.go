package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	return pick(r.pool, r.tx)
}

// eventColumns selects an event aliased as e, with its organizers resolved to public summaries.
const eventColumns = `
e.id, e.title, e.description, e.short_description,
e.start_date, e.end_date, e.registration_deadline,
e.location_type, e.location_address, e.location_city, e.location_country, e.latitude, e.longitude,
e.max_participants, e.current_participants, e.categories, e.difficulty, e.tags, e.status,
e.featured, e.cover_image, e.registration_fee, e.currency, e.organizer_ids, e.details,
e.stat_views, e.stat_registrations, e.stat_submissions, e.created_at, e.updated_at,
(SELECT coalesce(json_agg(json_build_object(
          'id', u.id, 'firstName', u.first_name, 'lastName', u.last_name, 'email', u.email)
        ORDER BY array_position(e.organizer_ids, u.id)), '[]'::json)
   FROM users u
  WHERE u.id = ANY(e.organizer_ids)) AS organizers`

// listFilters is shared by List and Count. Arguments $1..$6 follow Filters.
const listFilters = `
 WHERE ($1 = '' OR $1 = ANY(e.categories))
   AND ($2 = '' OR e.difficulty = $2)
   AND ($3 = '' OR e.location_type = $3)
   AND ($4 = '' OR e.status = $4)
   AND (NOT $5::boolean OR e.featured)
   AND ($6 = '' OR e.search_vector @@ websearch_to_tsquery('english', $6))`

type eventRow struct {
	ID                   string
	Title                string
	Description          string
	ShortDescription     string
	StartDate            pgtype.Timestamptz
	EndDate              pgtype.Timestamptz
	RegistrationDeadline pgtype.Timestamptz
	LocationType         string
	LocationAddress      string
	LocationCity         string
	LocationCountry      string
	Latitude             *float64
	Longitude            *float64
	MaxParticipants      *int32
	CurrentParticipants  int32
	Categories           []string
	Difficulty           string
	Tags                 []string
	Status               string
	Featured             bool
	CoverImage           string
	RegistrationFee      float64
	Currency             string
	OrganizerIDs         []string
	Details              events.Details
	Views                int32
	Registrations        int32
	Submissions          int32
	CreatedAt            pgtype.Timestamptz
	UpdatedAt            pgtype.Timestamptz
	Organizers           []events.Organizer
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var r eventRow
	if err := row.Scan(
		&r.ID,
		&r.Title,
		&r.Description,
		&r.ShortDescription,
		&r.StartDate,
		&r.EndDate,
		&r.RegistrationDeadline,
		&r.LocationType,
		&r.LocationAddress,
		&r.LocationCity,
		&r.LocationCountry,
		&r.Latitude,
		&r.Longitude,
		&r.MaxParticipants,
		&r.CurrentParticipants,
		&r.Categories,
		&r.Difficulty,
		&r.Tags,
		&r.Status,
		&r.Featured,
		&r.CoverImage,
		&r.RegistrationFee,
		&r.Currency,
		&r.OrganizerIDs,
		&r.Details,
		&r.Views,
		&r.Registrations,
		&r.Submissions,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.Organizers,
	); err != nil {
		return nil, err
	}

	event := &events.Event{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Location: events.Location{
			Type:    events.LocationType(r.LocationType),
			Address: r.LocationAddress,
			City:    r.LocationCity,
			Country: r.LocationCountry,
		},
		CurrentParticipants: int(r.CurrentParticipants),
		Categories:          typedOf[events.Category](r.Categories),
		Difficulty:          events.Difficulty(r.Difficulty),
		Tags:                r.Tags,
		Status:              events.Status(r.Status),
		Featured:            r.Featured,
		CoverImage:          r.CoverImage,
		RegistrationFee:     r.RegistrationFee,
		Currency:            r.Currency,
		OrganizerIDs:        r.OrganizerIDs,
		Organizers:          r.Organizers,
		Details:             r.Details,
		Statistics: events.Statistics{
			Views:         int(r.Views),
			Registrations: int(r.Registrations),
			Submissions:   int(r.Submissions),
		},
	}
	if r.StartDate.Valid {
		event.StartDate = r.StartDate.Time.UTC()
	}
	if r.EndDate.Valid {
		event.EndDate = r.EndDate.Time.UTC()
	}
	if r.RegistrationDeadline.Valid {
		event.RegistrationDeadline = r.RegistrationDeadline.Time.UTC()
	}
	if r.CreatedAt.Valid {
		event.CreatedAt = r.CreatedAt.Time.UTC()
	}
	if r.UpdatedAt.Valid {
		event.UpdatedAt = r.UpdatedAt.Time.UTC()
	}
	if r.Latitude != nil && r.Longitude != nil {
		event.Location.Coordinates = &events.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	if r.MaxParticipants != nil {
		capacity := int(*r.MaxParticipants)
		event.MaxParticipants = &capacity
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}
	if event.Organizers == nil {
		event.Organizers = []events.Organizer{}
	}
	return event, nil
}

func collectEvents(rows pgx.Rows, op string) ([]events.Event, error) {
	defer rows.Close()

	items := []events.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return items, nil
}

// scanOne maps a missing row to notFound.
func scanOne(row pgx.Row, op string, notFound error) (*events.Event, error) {
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}

func filterArgs(f events.Filters) []any {
	return []any{
		string(f.Category),
		string(f.Difficulty),
		string(f.Location),
		string(f.Status),
		f.Featured,
		f.Search,
	}
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page pagination.Page) ([]events.Event, error) {
	args := append(filterArgs(filters), page.Limit, page.Offset())

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events e`+listFilters+`
 ORDER BY CASE WHEN $6 = '' THEN 0
               ELSE ts_rank(e.search_vector, websearch_to_tsquery('english', $6)) END DESC,
          e.start_date ASC, e.id ASC
 LIMIT $7 OFFSET $8`, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return collectEvents(rows, "events")
}

func (r *EventRepository) Count(ctx context.Context, filters events.Filters) (int, error) {
	var total int64
	err := r.queryer().QueryRow(ctx, `
SELECT count(*)
  FROM events e`+listFilters, filterArgs(filters)...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return int(total), nil
}

func (r *EventRepository) Featured(ctx context.Context, limit int) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.featured
   AND e.status = ANY($1::text[])
 ORDER BY e.start_date ASC, e.id ASC
 LIMIT $2`, promotedStatuses(), limit)
	if err != nil {
		return nil, fmt.Errorf("featured events: %w", err)
	}
	return collectEvents(rows, "featured events")
}

func (r *EventRepository) Upcoming(ctx context.Context, limit int, now time.Time) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.status = ANY($1::text[])
   AND e.start_date > $2
 ORDER BY e.start_date ASC, e.id ASC
 LIMIT $3`, promotedStatuses(), now, limit)
	if err != nil {
		return nil, fmt.Errorf("upcoming events: %w", err)
	}
	return collectEvents(rows, "upcoming events")
}

func (r *EventRepository) Search(ctx context.Context, query string, filters events.SearchFilters, limit int) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events e, websearch_to_tsquery('english', $1) q
 WHERE e.search_vector @@ q
   AND (coalesce(cardinality($2::text[]), 0) = 0 OR e.categories && $2::text[])
   AND ($3 = '' OR e.difficulty = $3)
   AND ($4 = '' OR e.location_type = $4)
 ORDER BY ts_rank(e.search_vector, q) DESC, e.start_date ASC, e.id ASC
 LIMIT $5`,
		query,
		stringsOf(filters.Categories),
		string(filters.Difficulty),
		string(filters.Location),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return collectEvents(rows, "searched events")
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
	return scanOne(row, "get event", events.ErrNotFound)
}

func (r *EventRepository) IncrementViews(ctx context.Context, id string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
WITH updated AS (
  UPDATE events SET stat_views = stat_views + 1 WHERE id = $1 RETURNING *
)
SELECT `+eventColumns+` FROM updated e`, id)
	return scanOne(row, "increment event views", events.ErrNotFound)
}

func writeArgs(e events.Event) []any {
	var lat, lng *float64
	if e.Location.Coordinates != nil {
		lat = &e.Location.Coordinates.Latitude
		lng = &e.Location.Coordinates.Longitude
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		e.ID,
		e.Title,
		e.Description,
		e.ShortDescription,
		e.StartDate,
		e.EndDate,
		e.RegistrationDeadline,
		string(e.Location.Type),
		e.Location.Address,
		e.Location.City,
		e.Location.Country,
		lat,
		lng,
		e.MaxParticipants,
		e.CurrentParticipants,
		stringsOf(e.Categories),
		string(e.Difficulty),
		tags,
		string(e.Status),
		e.Featured,
		e.CoverImage,
		e.RegistrationFee,
		e.Currency,
		e.Details,
	}
}

func (r *EventRepository) Create(ctx context.Context, event events.Event) (*events.Event, error) {
	args := append(writeArgs(event), event.OrganizerIDs)
	row := r.queryer().QueryRow(ctx, `
WITH inserted AS (
  INSERT INTO events (
    id, title, description, short_description, start_date, end_date, registration_deadline,
    location_type, location_address, location_city, location_country, latitude, longitude,
    max_participants, current_participants, categories, difficulty, tags, status,
    featured, cover_image, registration_fee, currency, details, organizer_ids
  ) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
    $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
  )
  RETURNING *
)
SELECT `+eventColumns+` FROM inserted e`, args...)
	return scanOne(row, "create event", events.ErrNotFound)
}

// Update writes every editable column. Unless setParticipants is true the stored
// currentParticipants is kept, so a registration admitted after the caller's read
// is not lost. It is still clamped to the new maxParticipants.
func (r *EventRepository) Update(ctx context.Context, event events.Event, setParticipants bool) (*events.Event, error) {
	args := append(writeArgs(event), setParticipants)
	row := r.queryer().QueryRow(ctx, `
WITH updated AS (
  UPDATE events SET
    title = $2, description = $3, short_description = $4,
    start_date = $5, end_date = $6, registration_deadline = $7,
    location_type = $8, location_address = $9, location_city = $10, location_country = $11,
    latitude = $12, longitude = $13,
    max_participants = $14,
    current_participants = CASE
      WHEN $25::boolean THEN $15
      ELSE LEAST(current_participants, coalesce($14, current_participants))
    END,
    categories = $16, difficulty = $17,
    tags = $18, status = $19, featured = $20, cover_image = $21, registration_fee = $22,
    currency = $23, details = $24, updated_at = now()
  WHERE id = $1
  RETURNING *
)
SELECT `+eventColumns+` FROM updated e`, args...)
	return scanOne(row, "update event", events.ErrNotFound)
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

// Register performs the admission check and both increments in one statement, so
// concurrent registrants can never push currentParticipants past maxParticipants.
func (r *EventRepository) Register(ctx context.Context, id string, now time.Time) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
WITH updated AS (
  UPDATE events SET
    current_participants = current_participants + 1,
    stat_registrations = stat_registrations + 1,
    updated_at = now()
  WHERE id = $1
    AND status = $2
    AND registration_deadline >= $3
    AND (max_participants IS NULL OR current_participants < max_participants)
  RETURNING *
)
SELECT `+eventColumns+` FROM updated e`, id, string(events.StatusRegistrationOpen), now)
	return scanOne(row, "register for event", events.ErrNotAdmitted)
}

func promotedStatuses() []string {
	return []string{string(events.StatusPublished), string(events.StatusRegistrationOpen)}
}
