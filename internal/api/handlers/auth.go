package handlers

import (
	"net/http"
	"time"

	"github.com/hackhub-dev/server/internal/api/problem"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/hackhub-dev/server/internal/metrics"
	"github.com/hackhub-dev/server/internal/validation"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *auth.JWTManager
	Env    string
	now    func() time.Time
}

func NewAuthHandler(service *users.Service, tokens *auth.JWTManager, env string) *AuthHandler {
	return &AuthHandler{Users: service, Tokens: tokens, Env: env, now: time.Now}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var loginMessages = validation.Messages{
	"email":    "Please provide a valid email",
	"password": "Password is required",
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input users.SignupInput
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, r, h.Env, err)
		return
	}

	user, err := h.Users.Signup(r.Context(), input)
	if err != nil {
		metrics.RecordAuthAttempt("signup", false)
		writeError(w, r, h.Env, err, "Server error during registration")
		return
	}

	token, err := h.Tokens.Generate(user.ID, user.Role)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, "Server error during registration", err, h.Env)
		return
	}

	metrics.RecordAuthAttempt("signup", true)
	problem.Success(w, http.StatusCreated, "User registered successfully", problem.Payload{
		"token": token,
		"user":  user.Profile(),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := decodeJSON(r, &input); err != nil {
		writeDecodeError(w, r, h.Env, err)
		return
	}
	if err := validation.Struct(input, loginMessages); err != nil {
		writeError(w, r, h.Env, err, "Server error during login")
		return
	}

	user, err := h.Users.Authenticate(r.Context(), input.Email, input.Password, h.now())
	if err != nil {
		metrics.RecordAuthAttempt("login", false)
		writeError(w, r, h.Env, err, "Server error during login")
		return
	}

	token, err := h.Tokens.Generate(user.ID, user.Role)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, "Server error during login", err, h.Env)
		return
	}

	metrics.RecordAuthAttempt("login", true)
	problem.Success(w, http.StatusOK, "Login successful", problem.Payload{
		"token": token,
		"user":  user.Profile(),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := principal(r)
	if !ok {
		writeNoPrincipal(w, r, h.Env)
		return
	}

	profile, err := h.Users.GetProfile(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, h.Env, err, "Server error while fetching user")
		return
	}
	problem.Success(w, http.StatusOK, "", problem.Payload{"user": profile})
}
