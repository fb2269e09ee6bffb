package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func migrationsAt(version uint, dirty bool, err error) MigrationState {
	return func(context.Context) (uint, bool, error) {
		return version, dirty, err
	}
}

func readyCheck(t *testing.T, checker *HealthChecker) (int, HealthCheck) {
	t.Helper()
	res := httptest.NewRecorder()
	checker.Ready(res, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body HealthCheck
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return res.Code, body
}

func TestReadyHealthy(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	checker := NewHealthChecker(ok, migrationsAt(3, false, nil), "1.2.0", "abc123")

	code, body := readyCheck(t, checker)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "1.2.0", body.Version)
	require.Equal(t, "abc123", body.GitCommit)
	require.Equal(t, "pass", body.Checks["database"].Status)
	require.Equal(t, "pass", body.Checks["migrations"].Status)
}

func TestReadyDegradedAndUnhealthy(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })

	code, body := readyCheck(t, NewHealthChecker(ok, migrationsAt(0, false, nil), "dev", "unknown"))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "degraded", body.Status)

	code, body = readyCheck(t, NewHealthChecker(ok, migrationsAt(4, true, nil), "dev", "unknown"))
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "unhealthy", body.Status)
	require.Contains(t, body.Checks["migrations"].Message, "dirty")

	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	code, body = readyCheck(t, NewHealthChecker(down, migrationsAt(4, false, nil), "dev", "unknown"))
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "fail", body.Checks["database"].Status)
	require.Equal(t, "connection refused", body.Checks["database"].Details["error"])

	code, _ = readyCheck(t, NewHealthChecker(nil, nil, "dev", "unknown"))
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadyDuringShutdown(t *testing.T) {
	checker := NewHealthChecker(nil, nil, "dev", "unknown")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := httptest.NewRecorder()
	checker.Ready(res, httptest.NewRequest(http.MethodGet, "/readyz", nil).WithContext(ctx))
	require.Equal(t, http.StatusServiceUnavailable, res.Code)
	require.Contains(t, res.Body.String(), "shutting_down")
}

func TestLive(t *testing.T) {
	res := httptest.NewRecorder()
	NewHealthChecker(nil, nil, "dev", "unknown").Live(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "no-store", res.Header().Get("Cache-Control"))
}
