package handlers

import (
	"net/http"
	"strings"

	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/api/problem"
	"github.com/hackhub-dev/server/internal/audit"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/hackhub-dev/server/internal/validation"
)

// UsersHandler serves the self-service /api/user endpoints and the admin user search.
type UsersHandler struct {
	Service *users.Service
	Audit   *audit.Logger
	Env     string
}

func NewUsersHandler(service *users.Service, auditLogger *audit.Logger, env string) *UsersHandler {
	return &UsersHandler{Service: service, Audit: auditLogger, Env: env}
}

func (h *UsersHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	profile, err := h.Service.GetProfile(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching profile")
		return
	}
	problem.Success(w, http.StatusOK, "", problem.Payload{"user": profile})
}

func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	var patch users.ProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDecodeError(w, r, h.Env, err)
		return
	}

	profile, err := h.Service.UpdateProfile(r.Context(), caller.UserID, patch)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while updating profile")
		return
	}
	problem.Success(w, http.StatusOK, "Profile updated successfully", problem.Payload{"user": profile})
}

func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	if err := h.Service.Deactivate(r.Context(), caller.UserID); err != nil {
		writeError(w, r, h.Env, err, "Server error while deactivating account")
		return
	}

	h.Audit.LogFromRequest(r, "user.deactivate", "user", caller.UserID, audit.StatusSuccess, nil)
	problem.Success(w, http.StatusOK, "Account deactivated successfully", nil)
}

func (h *UsersHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	prefs, err := h.Service.GetPreferences(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching preferences")
		return
	}
	problem.Success(w, http.StatusOK, "", problem.Payload{"preferences": prefs})
}

func (h *UsersHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	var patch users.PreferencesPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDecodeError(w, r, h.Env, err)
		return
	}

	prefs, err := h.Service.UpdatePreferences(r.Context(), caller.UserID, patch)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while updating preferences")
		return
	}
	problem.Success(w, http.StatusOK, "Preferences updated successfully", problem.Payload{"preferences": prefs})
}

func (h *UsersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	stats, err := h.Service.Stats(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching statistics")
		return
	}
	problem.Success(w, http.StatusOK, "", problem.Payload{"stats": stats})
}

// Search is admin only: GET /api/user/search?q=&role=&page=&limit=.
func (h *UsersHandler) Search(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	values := r.URL.Query()
	var errs validation.Errors
	page, err := pagination.Parse(values, pagination.Events)
	errs.Merge(err)

	params := users.SearchParams{Query: values.Get("q")}
	if role := strings.TrimSpace(values.Get("role")); role != "" {
		if auth.ValidRole(role) {
			params.Role = auth.Role(role)
		} else {
			errs.Add("role", "Invalid role")
		}
	}
	if err := errs.Err(); err != nil {
		writeError(w, r, h.Env, err, "Server error while searching users")
		return
	}

	result, err := h.Service.Search(r.Context(), caller, params, page)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while searching users")
		return
	}

	h.Audit.LogFromRequest(r, "user.search", "user", "", audit.StatusSuccess, map[string]string{"query": params.Query, "role": string(params.Role)})
	problem.Success(w, http.StatusOK, "", problem.Payload{
		"users":      result.Users,
		"pagination": result.Pagination,
	})
}
