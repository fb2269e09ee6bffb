package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

func newAuthHandler(store *userStore) *AuthHandler {
	h := NewAuthHandler(users.NewService(store, zerolog.Nop()), auth.NewJWTManager(testSecret, time.Hour, "hackhub"), "production")
	h.now = func() time.Time { return fixedNow }
	return h
}

func TestSignupLoginAndMe(t *testing.T) {
	store := newUserStore()
	h := newAuthHandler(store)

	signup := map[string]any{
		"firstName": "Katherine",
		"lastName":  "Johnson",
		"email":     "  Katherine@Example.com ",
		"password":  "orbital-mechanics",
	}
	res := httptest.NewRecorder()
	h.Register(res, request(http.MethodPost, "/api/auth/register", signup, nil))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	body := decode(t, res)
	require.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	require.Equal(t, "katherine@example.com", user["email"])
	require.Equal(t, "member", user["role"])

	res = httptest.NewRecorder()
	h.Register(res, request(http.MethodPost, "/api/auth/register", signup, nil))
	require.Equal(t, http.StatusConflict, res.Code)

	res = httptest.NewRecorder()
	h.Login(res, request(http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "katherine@example.com",
		"password": "orbital-mechanics",
	}, nil))
	require.Equal(t, http.StatusOK, res.Code)
	body = decode(t, res)
	token := body["token"].(string)

	claims, err := h.Tokens.Validate(token)
	require.NoError(t, err)
	principal := claims.Principal()
	require.Equal(t, user["id"], principal.UserID)
	require.NotNil(t, store.users[principal.UserID].LastLogin)

	res = httptest.NewRecorder()
	h.Me(res, request(http.MethodGet, "/api/auth/me", nil, &principal))
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "Katherine", decode(t, res)["user"].(map[string]any)["firstName"])
}

func TestLoginFailures(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	active := sampleUser("u1", "active@example.com", auth.RoleMember)
	active.PasswordHash = hash
	inactive := sampleUser("u2", "gone@example.com", auth.RoleMember)
	inactive.PasswordHash = hash
	inactive.IsActive = false
	h := newAuthHandler(newUserStore(active, inactive))

	cases := []struct {
		name   string
		body   any
		status int
	}{
		{"wrong password", map[string]any{"email": "active@example.com", "password": "battery-staple"}, http.StatusUnauthorized},
		{"unknown email", map[string]any{"email": "nobody@example.com", "password": "correct-horse"}, http.StatusUnauthorized},
		{"inactive account", map[string]any{"email": "gone@example.com", "password": "correct-horse"}, http.StatusUnauthorized},
		{"missing password", map[string]any{"email": "active@example.com"}, http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			h.Login(res, request(http.MethodPost, "/api/auth/login", tc.body, nil))
			require.Equal(t, tc.status, res.Code)
			require.Equal(t, false, decode(t, res)["success"])
		})
	}
}

func TestSignupValidation(t *testing.T) {
	h := newAuthHandler(newUserStore())

	res := httptest.NewRecorder()
	h.Register(res, request(http.MethodPost, "/api/auth/register", map[string]any{
		"firstName": "K",
		"email":     "not-an-email",
		"password":  "123",
	}, nil))
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.GreaterOrEqual(t, len(decode(t, res)["errors"].([]any)), 3)
}
