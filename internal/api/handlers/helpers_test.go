package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hackhub-dev/server/internal/api/middleware"
	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// eventStore is an in-memory events.Repository.
type eventStore struct {
	mu     sync.Mutex
	events map[string]events.Event
	err    error
}

func newEventStore(list ...events.Event) *eventStore {
	s := &eventStore{events: map[string]events.Event{}}
	for _, e := range list {
		s.events[e.ID] = e
	}
	return s
}

func (s *eventStore) sorted() []events.Event {
	out := make([]events.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (s *eventStore) List(_ context.Context, _ events.Filters, page pagination.Page) ([]events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	all := s.sorted()
	start := page.Offset()
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+page.Limit, len(all))
	return all[start:end], nil
}

func (s *eventStore) Count(context.Context, events.Filters) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), s.err
}

func (s *eventStore) Featured(_ context.Context, limit int) ([]events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.Event
	for _, e := range s.sorted() {
		if e.Featured && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, s.err
}

func (s *eventStore) Upcoming(_ context.Context, limit int, now time.Time) ([]events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.Event
	for _, e := range s.sorted() {
		if e.StartDate.After(now) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, s.err
}

func (s *eventStore) Search(_ context.Context, query string, _ events.SearchFilters, limit int) ([]events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.Event
	for _, e := range s.sorted() {
		if strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, s.err
}

func (s *eventStore) GetByID(_ context.Context, id string) (*events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return &e, nil
}

func (s *eventStore) IncrementViews(_ context.Context, id string) (*events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	e.Statistics.Views++
	s.events[id] = e
	return &e, nil
}

func (s *eventStore) Create(_ context.Context, e events.Event) (*events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.CreatedAt, e.UpdatedAt = fixedNow, fixedNow
	s.events[e.ID] = e
	return &e, nil
}

func (s *eventStore) Update(_ context.Context, e events.Event, setParticipants bool) (*events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.events[e.ID]
	if !ok {
		return nil, events.ErrNotFound
	}
	if !setParticipants {
		e.CurrentParticipants = stored.CurrentParticipants
		events.ClampParticipants(&e)
	}
	s.events[e.ID] = e
	return &e, nil
}

func (s *eventStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *eventStore) Register(_ context.Context, id string, now time.Time) (*events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	if events.CheckRegistration(e, now) != nil {
		return nil, events.ErrNotAdmitted
	}
	e.CurrentParticipants++
	e.Statistics.Registrations++
	s.events[id] = e
	return &e, nil
}

// userStore is an in-memory users.Repository.
type userStore struct {
	mu    sync.Mutex
	users map[string]users.User
}

func newUserStore(list ...users.User) *userStore {
	s := &userStore{users: map[string]users.User{}}
	for _, u := range list {
		s.users[u.ID] = u
	}
	return s
}

func (s *userStore) GetByID(_ context.Context, id string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &u, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *userStore) Create(_ context.Context, u users.User) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, users.ErrEmailTaken
		}
	}
	u.CreatedAt, u.UpdatedAt = fixedNow, fixedNow
	s.users[u.ID] = u
	return &u, nil
}

func (s *userStore) UpdateProfile(_ context.Context, u users.User, prefs users.PreferencesUpdate) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[u.ID]
	if !ok {
		return nil, users.ErrNotFound
	}
	u.Preferences = stored.Preferences
	s.users[u.ID] = u
	return s.applyPreferences(u.ID, prefs)
}

func (s *userStore) UpdatePreferences(_ context.Context, id string, update users.PreferencesUpdate) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyPreferences(id, update)
}

// applyPreferences expects s.mu to be held.
func (s *userStore) applyPreferences(id string, update users.PreferencesUpdate) (*users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	if update.Theme != nil {
		u.Preferences.Theme = *update.Theme
	}
	if update.EmailNotifications != nil {
		u.Preferences.Notifications.Email = *update.EmailNotifications
	}
	if update.PushNotifications != nil {
		u.Preferences.Notifications.Push = *update.PushNotifications
	}
	s.users[id] = u
	return &u, nil
}

func (s *userStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return users.ErrNotFound
	}
	u.IsActive = active
	s.users[id] = u
	return nil
}

func (s *userStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.LastLogin = &at
	s.users[id] = u
	return nil
}

func (s *userStore) Search(_ context.Context, params users.SearchParams, _ pagination.Page) ([]users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []users.User
	for _, u := range s.users {
		if u.IsActive && (params.Role == "" || u.Role == params.Role) && strings.Contains(strings.ToLower(u.Email), strings.ToLower(params.Query)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *userStore) CountSearch(ctx context.Context, params users.SearchParams) (int, error) {
	list, err := s.Search(ctx, params, pagination.Page{})
	return len(list), err
}

type envelope map[string]any

func decode(t *testing.T, res *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body), res.Body.String())
	return body
}

// request builds a request as the router would hand it to a handler.
func request(method, target string, body any, principal *auth.Principal) *http.Request {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), *principal))
	}
	return req
}

func intPtr(v int) *int {
	return &v
}
