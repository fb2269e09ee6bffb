package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/hackhub-dev/server/internal/config"
	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/hackhub-dev/server/internal/metrics"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// UserLookup resolves the registrant a confirmation is addressed to.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// Service sends registration confirmations through Resend. It implements events.Notifier.
type Service struct {
	config    config.EmailConfig
	users     UserLookup
	client    *resend.Client
	templates *template.Template
	logger    zerolog.Logger
	now       func() time.Time
}

var _ events.Notifier = (*Service)(nil)

// RegistrationData feeds the registration_confirmed.html template.
type RegistrationData struct {
	FirstName   string
	EventTitle  string
	StartDate   string
	EndDate     string
	Location    string
	EventLink   string
	CurrentYear int
}

func NewService(cfg config.EmailConfig, lookup UserLookup, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	svc := &Service{
		config:    cfg,
		users:     lookup,
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
		now:       time.Now,
	}
	if cfg.Enabled {
		svc.client = resend.NewClient(cfg.APIKey)
	}
	return svc, nil
}

// RegistrationConfirmed emails the registrant unless they opted out of email
// notifications or sending is disabled.
func (s *Service) RegistrationConfirmed(ctx context.Context, userID string, event events.Event) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		metrics.RecordNotification("failed")
		return fmt.Errorf("load registrant: %w", err)
	}

	if !user.Preferences.Notifications.Email {
		metrics.RecordNotification("skipped")
		s.logger.Debug().Str("user_id", userID).Str("event_id", event.ID).Msg("email notifications disabled by user")
		return nil
	}
	if err := validateEmailAddress(user.Email); err != nil {
		metrics.RecordNotification("failed")
		return fmt.Errorf("invalid recipient email: %w", err)
	}

	if !s.config.Enabled {
		metrics.RecordNotification("skipped")
		s.logger.Info().
			Str("user_id", userID).
			Str("event_id", event.ID).
			Msg("email service disabled, skipping registration confirmation")
		return nil
	}

	htmlBody, err := s.renderTemplate("registration_confirmed.html", s.registrationData(*user, event))
	if err != nil {
		metrics.RecordNotification("failed")
		return fmt.Errorf("failed to render registration template: %w", err)
	}

	subject := fmt.Sprintf("You're registered for %s", event.Title)
	if err := s.sendViaResend(ctx, user.Email, subject, htmlBody); err != nil {
		metrics.RecordNotification("failed")
		return err
	}
	metrics.RecordNotification("sent")
	return nil
}

func (s *Service) registrationData(user users.User, event events.Event) RegistrationData {
	data := RegistrationData{
		FirstName:   user.FirstName,
		EventTitle:  event.Title,
		StartDate:   event.StartDate.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
		EndDate:     event.EndDate.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
		Location:    describeLocation(event.Location),
		CurrentYear: s.now().Year(),
	}
	if link, err := eventLink(s.config.AppURL, event.ID); err == nil {
		data.EventLink = link
	}
	return data
}

func describeLocation(loc events.Location) string {
	var parts []string
	for _, part := range []string{loc.Address, loc.City, loc.Country} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 || loc.Type == events.LocationOnline {
		return "Online"
	}
	if loc.Type == events.LocationHybrid {
		return strings.Join(parts, ", ") + " (and online)"
	}
	return strings.Join(parts, ", ")
}

func (s *Service) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sendViaResend reports rate limiting separately and never retries.
func (s *Service) sendViaResend(ctx context.Context, to, subject, htmlBody string) error {
	if s.client == nil {
		return errors.New("resend client not initialized")
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.config.From,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("remaining", rateLimitErr.Remaining).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return fmt.Errorf("email rate limit exceeded (limit: %s, resets in: %s seconds): %w",
				rateLimitErr.Limit, rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	s.logger.Info().
		Str("email_id", sent.Id).
		Str("to", to).
		Msg("email sent via Resend")
	return nil
}

// validateEmailAddress rejects malformed addresses and header injection attempts.
func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return errors.New("invalid email address: contains newline characters")
	}
	return nil
}

func eventLink(appURL, eventID string) (string, error) {
	base, err := url.Parse(appURL)
	if err != nil {
		return "", err
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("invalid URL scheme: %s (must be http or https)", base.Scheme)
	}
	if base.Host == "" {
		return "", errors.New("URL must have a host")
	}
	return base.JoinPath("events", eventID).String(), nil
}
