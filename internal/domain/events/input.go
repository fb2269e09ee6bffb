package events

import (
	"strings"
	"time"

	"github.com/hackhub-dev/server/internal/domain/patch"
	"github.com/hackhub-dev/server/internal/sanitize"
	"github.com/hackhub-dev/server/internal/validation"
)

// CreateInput is the payload accepted when creating an event. Dates are ISO 8601 strings.
type CreateInput struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	ShortDescription     string     `json:"shortDescription"`
	StartDate            string     `json:"startDate"`
	EndDate              string     `json:"endDate"`
	RegistrationDeadline string     `json:"registrationDeadline"`
	Location             *Location  `json:"location"`
	MaxParticipants      *int       `json:"maxParticipants"`
	Categories           []Category `json:"categories"`
	Difficulty           Difficulty `json:"difficulty"`
	Tags                 []string   `json:"tags"`
	Status               Status     `json:"status"`
	Featured             bool       `json:"featured"`
	CoverImage           string     `json:"coverImage"`
	RegistrationFee      float64    `json:"registrationFee"`
	Currency             string     `json:"currency"`
	Details              *Details   `json:"details"`
}

// UpdateInput carries a sparse update. Only fields present in the payload change.
type UpdateInput struct {
	Title                patch.Field[string]     `json:"title"`
	Description          patch.Field[string]     `json:"description"`
	ShortDescription     patch.Field[string]     `json:"shortDescription"`
	StartDate            patch.Field[string]     `json:"startDate"`
	EndDate              patch.Field[string]     `json:"endDate"`
	RegistrationDeadline patch.Field[string]     `json:"registrationDeadline"`
	Location             patch.Field[Location]   `json:"location"`
	MaxParticipants      patch.Field[*int]       `json:"maxParticipants"`
	CurrentParticipants  patch.Field[int]        `json:"currentParticipants"`
	Categories           patch.Field[[]Category] `json:"categories"`
	Difficulty           patch.Field[Difficulty] `json:"difficulty"`
	Tags                 patch.Field[[]string]   `json:"tags"`
	Status               patch.Field[Status]     `json:"status"`
	Featured             patch.Field[bool]       `json:"featured"`
	CoverImage           patch.Field[string]     `json:"coverImage"`
	RegistrationFee      patch.Field[float64]    `json:"registrationFee"`
	Currency             patch.Field[string]     `json:"currency"`
	Details              patch.Field[Details]    `json:"details"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps and plain ISO 8601 dates. Values without a zone are UTC.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type dateField struct {
	name    string
	message string
	raw     string
	dst     *time.Time
}

func parseDates(errs *validation.Errors, fields ...dateField) {
	for _, f := range fields {
		t, ok := ParseDate(f.raw)
		if !ok {
			errs.Add(f.name, f.message)
			continue
		}
		*f.dst = t
	}
}

// NewEvent builds an event from a create payload, applying defaults, and validates it.
func NewEvent(input CreateInput) (Event, error) {
	event := Event{
		Title:            input.Title,
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Location:         Location{Type: LocationOnline},
		MaxParticipants:  input.MaxParticipants,
		Categories:       input.Categories,
		Difficulty:       input.Difficulty,
		Tags:             input.Tags,
		Status:           input.Status,
		Featured:         input.Featured,
		CoverImage:       input.CoverImage,
		RegistrationFee:  input.RegistrationFee,
		Currency:         input.Currency,
		Details:          DefaultDetails(),
	}
	if input.Location != nil {
		event.Location = *input.Location
		if event.Location.Type == "" {
			event.Location.Type = LocationOnline
		}
	}
	if input.Details != nil {
		event.Details = *input.Details
	}
	if event.Difficulty == "" {
		event.Difficulty = DifficultyIntermediate
	}
	if event.Status == "" {
		event.Status = StatusDraft
	}
	if event.Currency == "" {
		event.Currency = "USD"
	}

	var errs validation.Errors
	parseDates(&errs,
		dateField{"startDate", "Start date must be a valid date", input.StartDate, &event.StartDate},
		dateField{"endDate", "End date must be a valid date", input.EndDate, &event.EndDate},
		dateField{"registrationDeadline", "Registration deadline must be a valid date", input.RegistrationDeadline, &event.RegistrationDeadline},
	)

	normalize(&event)
	errs.Merge(validateEvent(event, len(errs) == 0))
	if err := errs.Err(); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Apply merges a sparse update into a copy of event and validates the merged result.
func (u UpdateInput) Apply(event Event) (Event, error) {
	var errs validation.Errors

	u.Title.Apply(&event.Title)
	u.Description.Apply(&event.Description)
	u.ShortDescription.Apply(&event.ShortDescription)

	var dates []dateField
	if u.StartDate.Set {
		dates = append(dates, dateField{"startDate", "Start date must be a valid date", u.StartDate.Value, &event.StartDate})
	}
	if u.EndDate.Set {
		dates = append(dates, dateField{"endDate", "End date must be a valid date", u.EndDate.Value, &event.EndDate})
	}
	if u.RegistrationDeadline.Set {
		dates = append(dates, dateField{"registrationDeadline", "Registration deadline must be a valid date", u.RegistrationDeadline.Value, &event.RegistrationDeadline})
	}
	parseDates(&errs, dates...)

	if u.Location.Apply(&event.Location) && event.Location.Type == "" {
		event.Location.Type = LocationOnline
	}
	u.MaxParticipants.Apply(&event.MaxParticipants)
	u.CurrentParticipants.Apply(&event.CurrentParticipants)
	u.Categories.Apply(&event.Categories)
	u.Difficulty.Apply(&event.Difficulty)
	u.Tags.Apply(&event.Tags)
	u.Status.Apply(&event.Status)
	u.Featured.Apply(&event.Featured)
	u.CoverImage.Apply(&event.CoverImage)
	u.RegistrationFee.Apply(&event.RegistrationFee)
	u.Currency.Apply(&event.Currency)
	u.Details.Apply(&event.Details)

	normalize(&event)
	errs.Merge(validateEvent(event, len(errs) == 0))
	if err := errs.Err(); err != nil {
		return Event{}, err
	}
	return event, nil
}

func normalize(e *Event) {
	e.Title = strings.TrimSpace(sanitize.Text(e.Title))
	e.Description = strings.TrimSpace(sanitize.Text(e.Description))
	e.ShortDescription = strings.TrimSpace(sanitize.Text(e.ShortDescription))
	e.Tags = sanitize.TextSlice(e.Tags)
	e.Currency = strings.ToUpper(strings.TrimSpace(e.Currency))
	ClampParticipants(e)
}

// eventRules mirrors the persisted fields that carry input rules.
type eventRules struct {
	Title            string     `json:"title" validate:"required,min=5,max=100"`
	Description      string     `json:"description" validate:"required,min=20,max=2000"`
	ShortDescription string     `json:"shortDescription" validate:"required,min=10,max=200"`
	Location         Location   `json:"location"`
	MaxParticipants  *int       `json:"maxParticipants" validate:"omitempty,gte=1"`
	Categories       []Category `json:"categories" validate:"required,min=1,dive,oneof=web-development mobile-development ai-ml blockchain cybersecurity iot other"`
	Difficulty       Difficulty `json:"difficulty" validate:"oneof=beginner intermediate advanced"`
	Status           Status     `json:"status" validate:"oneof=draft published registration-open registration-closed ongoing completed cancelled"`
	CoverImage       string     `json:"coverImage" validate:"omitempty,weburl"`
	RegistrationFee  float64    `json:"registrationFee" validate:"gte=0"`
	Currency         string     `json:"currency" validate:"required,len=3,alpha"`
	Details          Details    `json:"details"`
}

var eventMessages = validation.Messages{
	"title":            "Title must be between 5 and 100 characters",
	"description":      "Description must be between 20 and 2000 characters",
	"shortDescription": "Short description must be between 10 and 200 characters",
	"categories":       "At least one category is required",
	"categories[]":     "Invalid category",
	"difficulty":       "Invalid difficulty",
	"status":           "Invalid status",
	"location.type":    "Invalid location type",
	"maxParticipants":  "Max participants must be at least 1",
	"coverImage":       "Cover image must be a valid URL",
	"registrationFee":  "Registration fee cannot be negative",
	"currency":         "Currency must be a three letter code",
}

// validateEvent checks field rules and, when the dates parsed, the date ordering.
func validateEvent(e Event, checkDates bool) error {
	var errs validation.Errors

	errs.Merge(validation.Struct(eventRules{
		Title:            e.Title,
		Description:      e.Description,
		ShortDescription: e.ShortDescription,
		Location:         e.Location,
		MaxParticipants:  e.MaxParticipants,
		Categories:       e.Categories,
		Difficulty:       e.Difficulty,
		Status:           e.Status,
		CoverImage:       e.CoverImage,
		RegistrationFee:  e.RegistrationFee,
		Currency:         e.Currency,
		Details:          e.Details,
	}, eventMessages))

	if checkDates {
		if e.EndDate.Before(e.StartDate) {
			errs.Add("endDate", "End date must be on or after start date")
		}
		if e.RegistrationDeadline.After(e.EndDate) {
			errs.Add("registrationDeadline", "Registration deadline must be on or before end date")
		}
	}

	return errs.Err()
}
