package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/hackhub-dev/server/internal/api/middleware"
	"github.com/hackhub-dev/server/internal/api/problem"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/hackhub-dev/server/internal/validation"
)

const validationMessage = "Validation failed"

// writeError maps domain errors onto the response taxonomy. Anything unrecognised
// becomes a 500 carrying fallback, e.g. "Server error while fetching events".
func writeError(w http.ResponseWriter, r *http.Request, env string, err error, fallback string) {
	if fields := validation.Fields(err); len(fields) > 0 {
		problem.Write(w, r, http.StatusBadRequest, validationMessage, err, env, problem.WithErrors(fields))
		return
	}

	var regErr *events.RegistrationError
	switch {
	case errors.As(err, &regErr):
		problem.Write(w, r, http.StatusBadRequest, regErr.Message, err, env, problem.WithCode(regErr.Code))
	case errors.Is(err, events.ErrSearchQueryRequired):
		problem.Write(w, r, http.StatusBadRequest, "Search query is required", err, env)
	case errors.Is(err, events.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "Event not found", err, env)
	case errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, "User not found", err, env)
	case errors.Is(err, events.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, "Not authorized to modify this event", err, env)
	case errors.Is(err, users.ErrForbidden):
		problem.Write(w, r, http.StatusForbidden, "Access denied. Insufficient permissions.", err, env)
	case errors.Is(err, users.ErrEmailTaken):
		problem.Write(w, r, http.StatusConflict, "User already exists with this email", err, env)
	case errors.Is(err, users.ErrInvalidCredentials):
		problem.Write(w, r, http.StatusUnauthorized, "Invalid credentials", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, fallback, err, env)
	}
}

// decodeJSON reads a JSON object body. Malformed bodies are reported as a validation error on "body".
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return validation.Errors{{Field: "body", Message: "Request body is required"}}
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return validation.Errors{{Field: "body", Message: "Request body is required"}}
	}
	return errors.Join(err, validation.Errors{{Field: "body", Message: "Request body must be valid JSON"}})
}

// writeDecodeError answers a failed decodeJSON.
func writeDecodeError(w http.ResponseWriter, r *http.Request, env string, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, "Request body too large", err, env)
		return
	}
	problem.Write(w, r, http.StatusBadRequest, validationMessage, err, env, problem.WithErrors(validation.Fields(err)))
}

// principal returns the authenticated caller. Routes that call it sit behind RequireAuth.
func principal(r *http.Request) (auth.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(p.UserID) == "" {
		return auth.Principal{}, false
	}
	return p, true
}

func writeNoPrincipal(w http.ResponseWriter, r *http.Request, env string) {
	problem.Write(w, r, http.StatusUnauthorized, "Access denied. No token provided.", nil, env)
}
