package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hackhub-dev/server/internal/validation"
	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Failure is the body of every error response.
type Failure struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Code    string                  `json:"code,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Detail  string                  `json:"detail,omitempty"`
}

type Option func(*Failure)

// WithCode attaches a machine readable reason, e.g. "event-full".
func WithCode(code string) Option {
	return func(f *Failure) {
		f.Code = code
	}
}

func WithErrors(errs []validation.FieldError) Option {
	return func(f *Failure) {
		f.Errors = errs
	}
}

func WithDetail(detail string) Option {
	return func(f *Failure) {
		f.Detail = detail
	}
}

// Write sends an error envelope. The cause is only echoed back in development and test.
func Write(w http.ResponseWriter, r *http.Request, status int, message string, err error, env string, opts ...Option) {
	failure := Failure{Message: message}
	for _, opt := range opts {
		opt(&failure)
	}

	if failure.Detail == "" && err != nil && (env == "development" || env == "test") {
		failure.Detail = err.Error()
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		if status >= 500 {
			event = logger.Error()
		} else {
			event = logger.Warn()
		}
		event.
			Err(err).
			Int("status", status).
			Str("code", failure.Code).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	writeJSON(w, status, failure)
}

// Payload holds the fields merged into a success envelope next to "success" and "message".
type Payload map[string]any

// Success sends {"success": true, "message"?: ..., ...payload}.
func Success(w http.ResponseWriter, status int, message string, payload Payload) {
	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Server error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)
