package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hackhub-dev/server/internal/metrics"
)

const checkTimeout = 2 * time.Second

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationState returns the applied schema version and whether the last migration failed midway.
type MigrationState func(ctx context.Context) (version uint, dirty bool, err error)

// HealthCheck is the body of /health and /readyz.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms"`
	Details   map[string]any `json:"details,omitempty"`
}

type HealthChecker struct {
	db         Pinger
	migrations MigrationState
	version    string
	gitCommit  string
	now        func() time.Time
}

func NewHealthChecker(db Pinger, migrations MigrationState, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		db:         db,
		migrations: migrations,
		version:    version,
		gitCommit:  gitCommit,
		now:        time.Now,
	}
}

// Live answers as long as the process serves requests.
func (h *HealthChecker) Live(w http.ResponseWriter, _ *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready runs the dependency checks. Any failing check makes the instance unready.
func (h *HealthChecker) Ready(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
		writeHealthJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	default:
	}

	checks := map[string]CheckResult{
		"database":   h.checkDatabase(r.Context()),
		"migrations": h.checkMigrations(r.Context()),
	}

	status, code := "healthy", http.StatusOK
	for name, check := range checks {
		metrics.SetHealthCheck(name, check.Status != "fail")
		switch check.Status {
		case "fail":
			status, code = "unhealthy", http.StatusServiceUnavailable
		case "warn":
			if status == "healthy" {
				status = "degraded"
			}
		}
	}

	writeHealthJSON(w, code, HealthCheck{
		Status:    status,
		Version:   h.version,
		GitCommit: h.gitCommit,
		Checks:    checks,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "Database pool not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "Database query failed"
		if ctx.Err() == context.DeadlineExceeded {
			message = "Database query timed out after 2 seconds"
		}
		return CheckResult{Status: "fail", Message: message, LatencyMs: latency, Details: map[string]any{"error": err.Error()}}
	}
	return CheckResult{Status: "pass", Message: "PostgreSQL connection successful", LatencyMs: latency}
}

func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	if h.migrations == nil {
		return CheckResult{Status: "warn", Message: "Migration state not available"}
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	version, dirty, err := h.migrations(ctx)
	latency := time.Since(start).Milliseconds()
	switch {
	case err != nil:
		return CheckResult{Status: "fail", Message: "Failed to query migration version", LatencyMs: latency, Details: map[string]any{"error": err.Error()}}
	case dirty:
		return CheckResult{
			Status:    "fail",
			Message:   "Database in dirty migration state - manual intervention required",
			LatencyMs: latency,
			Details:   map[string]any{"version": version, "dirty": true},
		}
	case version == 0:
		return CheckResult{Status: "warn", Message: "No migrations applied", LatencyMs: latency}
	}
	return CheckResult{Status: "pass", Message: "Migrations applied", LatencyMs: latency, Details: map[string]any{"version": version}}
}

func writeHealthJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
