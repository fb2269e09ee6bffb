package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/hackhub-dev/server/internal/api"
	"github.com/hackhub-dev/server/internal/api/handlers"
	"github.com/hackhub-dev/server/internal/api/middleware"
	"github.com/hackhub-dev/server/internal/audit"
	"github.com/hackhub-dev/server/internal/auth"
	"github.com/hackhub-dev/server/internal/config"
	"github.com/hackhub-dev/server/internal/domain/events"
	"github.com/hackhub-dev/server/internal/domain/ids"
	"github.com/hackhub-dev/server/internal/domain/users"
	"github.com/hackhub-dev/server/internal/email"
	"github.com/hackhub-dev/server/internal/metrics"
	"github.com/hackhub-dev/server/internal/storage/postgres"
	"github.com/hackhub-dev/server/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var (
		host string
		port int
	)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HackHub HTTP server",
		Long: `Start the HackHub HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Apply pending database migrations unless DATABASE_AUTO_MIGRATE=false
- Bootstrap an admin user if ADMIN_EMAIL and ADMIN_PASSWORD are set
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	serve.Flags().StringVar(&host, "host", "", "server host address (default: 0.0.0.0)")
	serve.Flags().IntVar(&port, "port", 0, "server port (default: 8080)")
	return serve
}

// runServer wires every component and serves until ctx is cancelled.
func runServer(ctx context.Context, cfg config.Config) error {
	logger := config.NewLogger(cfg.Logging)
	logger.Info().
		Str("version", Version).
		Str("environment", cfg.Environment).
		Msg("starting hackhub server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := postgres.MigrateUp(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		logger.Info().Msg("database migrations applied")
	}

	pool, err := postgres.Open(ctx, cfg.Database.URL, poolOptions(cfg))
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	if err := metrics.RegisterDBCollector(pool); err != nil {
		logger.Warn().Err(err).Msg("database metrics collector not registered")
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	bootstrapCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = bootstrapAdminUser(bootstrapCtx, cfg, repo, logger)
	cancel()
	if err != nil {
		return fmt.Errorf("admin bootstrap failed: %w", err)
	}

	notifier, err := email.NewService(cfg.Email, repo.Users(), logger)
	if err != nil {
		return fmt.Errorf("email service init failed: %w", err)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.Environment)
	defer rateLimiter.Stop()

	usersService := users.NewService(repo.Users(), logger)
	handler := api.NewRouter(api.Deps{
		Config:      cfg,
		Logger:      logger,
		Events:      events.NewService(repo.Events(), notifier, logger),
		Users:       usersService,
		Tokens:      auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer),
		Accounts:    usersService,
		Health:      handlers.NewHealthChecker(repo, repo.MigrationState, Version, GitCommit),
		Audit:       audit.NewLogger(logger),
		RateLimiter: rateLimiter,
		Build: api.BuildInfo{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		},
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return gracefulShutdown(server, cfg.Server.ShutdownTimeout, logger)
}

func poolOptions(cfg config.Config) postgres.PoolOptions {
	opts := postgres.PoolOptions{
		MaxConns:        int32(cfg.Database.MaxConnections),
		MinConns:        int32(cfg.Database.MinConnections),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	}
	if cfg.Tracing.Enabled {
		opts.Tracer = telemetry.NewQueryTracer()
	}
	return opts
}

type adminStore interface {
	EnsureAdmin(ctx context.Context, u users.User) (*users.User, bool, error)
}

func bootstrapAdminUser(ctx context.Context, cfg config.Config, store adminStore, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Email == "" || bootstrap.Password == "" {
		logger.Debug().Msg("admin bootstrap not configured; skipping")
		return nil
	}

	hash, err := auth.HashPassword(bootstrap.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	id, err := ids.NewULID()
	if err != nil {
		return fmt.Errorf("generate admin id: %w", err)
	}

	admin, created, err := store.EnsureAdmin(ctx, users.User{
		ID:           id,
		FirstName:    bootstrap.FirstName,
		LastName:     bootstrap.LastName,
		Email:        strings.ToLower(strings.TrimSpace(bootstrap.Email)),
		PasswordHash: hash,
		Preferences:  users.DefaultPreferences(),
	})
	if err != nil {
		return err
	}

	event := logger.Info().Str("user_id", admin.ID).Bool("created", created)
	// Email is PII; keep it out of production logs.
	if cfg.Environment != config.EnvProduction {
		event = event.Str("email", admin.Email)
	}
	event.Msg("bootstrapped admin user")
	return nil
}

func gracefulShutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	logger.Info().Msg("shutting down")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
