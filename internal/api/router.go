package api

import (
	"net/http"

	"github.com/hackhub-dev/server/internal/api/handlers"
	"github.com/hackhub-dev/server/internal/api/middleware"
	"github.com/hackhub-dev/server/internal/audit"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/config"
	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/hackhub-dev/server/internal/metrics"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config      config.Config
	Logger      zerolog.Logger
	Events      *events.Service
	Users       *users.Service
	Tokens      *auth.JWTManager
	Accounts    middleware.AccountChecker
	Health      *handlers.HealthChecker
	Audit       *audit.Logger
	RateLimiter *middleware.RateLimiter
	Build       BuildInfo
}

func NewRouter(deps Deps) http.Handler {
	env := deps.Config.Environment

	eventsHandler := handlers.NewEventsHandler(deps.Events, deps.Audit, env)
	usersHandler := handlers.NewUsersHandler(deps.Users, deps.Audit, env)
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, env)

	requireAuth := middleware.RequireAuth(env)
	requireAdmin := middleware.RequireRole(env, auth.RoleAdmin)
	requireManager := middleware.RequireRole(env, auth.RoleAdmin, auth.RoleModerator)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc, guards ...func(http.Handler) http.Handler) {
		mux.Handle(pattern, middleware.MarkRoute(middleware.Chain(h, guards...)))
	}

	health := deps.Health
	if health == nil {
		health = handlers.NewHealthChecker(nil, nil, deps.Build.Version, deps.Build.GitCommit)
	}
	handle("GET /healthz", health.Live)
	handle("GET /health", health.Ready)
	handle("GET /readyz", health.Ready)
	handle("GET /version", VersionHandler(deps.Build).ServeHTTP)
	handle("GET /metrics", metrics.Handler().ServeHTTP)
	handle("GET /api/openapi.json", OpenAPIHandler())

	handle("GET /api/events", eventsHandler.List)
	handle("GET /api/events/featured", eventsHandler.Featured)
	handle("GET /api/events/upcoming", eventsHandler.Upcoming)
	handle("GET /api/events/search", eventsHandler.Search)
	handle("GET /api/events/{id}", eventsHandler.Get)
	handle("POST /api/events", eventsHandler.Create, requireManager)
	handle("PUT /api/events/{id}", eventsHandler.Update, requireManager)
	handle("DELETE /api/events/{id}", eventsHandler.Delete, requireAdmin)
	handle("POST /api/events/{id}/register", eventsHandler.Register, requireAuth)

	handle("GET /api/user/profile", usersHandler.GetProfile, requireAuth)
	handle("PUT /api/user/profile", usersHandler.UpdateProfile, requireAuth)
	handle("DELETE /api/user/profile", usersHandler.Deactivate, requireAuth)
	handle("GET /api/user/preferences", usersHandler.GetPreferences, requireAuth)
	handle("PUT /api/user/preferences", usersHandler.UpdatePreferences, requireAuth)
	handle("GET /api/user/stats", usersHandler.Stats, requireAuth)
	handle("GET /api/user/search", usersHandler.Search, requireAdmin)

	handle("POST /api/auth/register", authHandler.Register)
	handle("POST /api/auth/login", authHandler.Login)
	handle("GET /api/auth/me", authHandler.Me, requireAuth)

	chain := []func(http.Handler) http.Handler{
		middleware.CorrelationID(deps.Logger),
		middleware.Recover(env),
		middleware.Tracing,
		metrics.HTTPMiddleware(middleware.RoutePattern),
		middleware.RequestLogging,
		middleware.SecurityHeaders(env == config.EnvProduction),
		middleware.CORS(deps.Config.CORS, deps.Logger),
		middleware.RequestSize(deps.Config.Server.MaxBodyBytes),
		middleware.Authenticate(deps.Tokens, deps.Accounts),
	}
	if deps.RateLimiter != nil {
		chain = append(chain, deps.RateLimiter.Middleware)
	}
	return middleware.Chain(mux, chain...)
}
