package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/hackhub-dev/server/internal/api/problem"
	"github.com/hackhub-dev/server/internal/audit"
	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/hackhub-dev/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Audit   *audit.Logger
	Env     string
	now     func() time.Time
}

func NewEventsHandler(service *events.Service, auditLogger *audit.Logger, env string) *EventsHandler {
	return &EventsHandler{Service: service, Audit: auditLogger, Env: env, now: time.Now}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, page, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching events")
		return
	}

	result, err := h.Service.List(r.Context(), filters, page)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching events")
		return
	}

	problem.Success(w, http.StatusOK, "", problem.Payload{
		"events":     events.NewViews(result.Events, h.now()),
		"pagination": result.Pagination,
	})
}

func (h *EventsHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, err := events.ParseFeedLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching featured events")
		return
	}

	list, err := h.Service.Featured(r.Context(), limit)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching featured events")
		return
	}
	problem.Success(w, http.StatusOK, "", problem.Payload{"events": events.NewViews(list, h.now())})
}

func (h *EventsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	limit, err := events.ParseFeedLimit(r.URL.Query())
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching upcoming events")
		return
	}

	list, err := h.Service.Upcoming(r.Context(), limit, h.now())
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching upcoming events")
		return
	}
	problem.Success(w, http.StatusOK, "", problem.Payload{"events": events.NewViews(list, h.now())})
}

func (h *EventsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, filters, limit, err := events.ParseSearch(r.URL.Query())
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while searching events")
		return
	}

	list, err := h.Service.Search(r.Context(), query, filters, limit)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while searching events")
		return
	}
	problem.Success(w, http.StatusOK, "", problem.Payload{"events": events.NewViews(list, h.now()), "query": query})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching event")
		return
	}
	problem.Success(w, http.StatusOK, "", problem.Payload{"event": events.NewView(*event, h.now())})
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	var input events.CreateInput
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, r, h.Env, err)
		return
	}

	event, err := h.Service.Create(r.Context(), caller, input)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while creating event")
		return
	}

	h.Audit.LogFromRequest(r, "event.create", "event", event.ID, audit.StatusSuccess, map[string]string{"title": event.Title})
	problem.Success(w, http.StatusCreated, "Event created successfully", problem.Payload{"event": events.NewView(*event, h.now())})
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	var input events.UpdateInput
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, r, h.Env, err)
		return
	}

	id := r.PathValue("id")
	event, err := h.Service.Update(r.Context(), caller, id, input)
	if err != nil {
		if errors.Is(err, events.ErrForbidden) {
			h.Audit.LogFromRequest(r, "event.update", "event", id, audit.StatusFailure, map[string]string{"reason": "not an organizer"})
			problem.Write(w, r, http.StatusForbidden, "Not authorized to update this event", err, h.Env)
			return
		}
		writeError(w, r, h.Env, err, "Server error while updating event")
		return
	}

	h.Audit.LogFromRequest(r, "event.update", "event", event.ID, audit.StatusSuccess, nil)
	problem.Success(w, http.StatusOK, "Event updated successfully", problem.Payload{"event": events.NewView(*event, h.now())})
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	id := r.PathValue("id")
	if err := h.Service.Delete(r.Context(), caller, id); err != nil {
		writeError(w, r, h.Env, err, "Server error while deleting event")
		return
	}

	h.Audit.LogFromRequest(r, "event.delete", "event", id, audit.StatusSuccess, nil)
	problem.Success(w, http.StatusOK, "Event deleted successfully", nil)
}

func (h *EventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	event, err := h.Service.Register(r.Context(), caller, r.PathValue("id"), h.now())
	if err != nil {
		var regErr *events.RegistrationError
		if errors.As(err, &regErr) {
			metrics.RecordRegistration(regErr.Code)
		} else {
			metrics.RecordRegistration(metrics.OutcomeError)
		}
		writeError(w, r, h.Env, err, "Server error while registering for event")
		return
	}

	metrics.RecordRegistration(metrics.OutcomeRegistered)
	problem.Success(w, http.StatusOK, "Successfully registered for event", problem.Payload{"event": events.NewView(*event, h.now())})
}
