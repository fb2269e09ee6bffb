package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/hackhub-dev/server/internal/api/handlers"
	"github.com/spf13/cobra"
)

// HealthCheckResult summarises one probe of the readiness endpoint.
type HealthCheckResult struct {
	URL        string
	Status     string
	HTTPStatus int
	IsHealthy  bool
	LatencyMs  int64
	Error      string
	Checks     map[string]handlers.CheckResult
}

func newHealthcheckCommand() *cobra.Command {
	var (
		url           string
		timeout       time.Duration
		allowDegraded bool
	)

	healthcheck := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by container HEALTHCHECK directives. It fails when the
server is unreachable, returns a non-200 status, or reports anything other
than "healthy" (or "degraded" with --allow-degraded).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = defaultHealthURL()
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result := performHealthCheck(ctx, url)
			if result.Status == "degraded" && allowDegraded && result.Error == "" {
				result.IsHealthy = true
			}
			printHealthResult(cmd, result)
			if !result.IsHealthy {
				if result.Error != "" {
					return fmt.Errorf("health check failed: %s", result.Error)
				}
				return fmt.Errorf("unhealthy: status=%s", result.Status)
			}
			return nil
		},
	}

	healthcheck.Flags().StringVar(&url, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
	healthcheck.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	healthcheck.Flags().BoolVar(&allowDegraded, "allow-degraded", false, "treat a degraded server as healthy")
	return healthcheck
}

func defaultHealthURL() string {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

func performHealthCheck(ctx context.Context, url string) HealthCheckResult {
	result := HealthCheckResult{URL: url}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		return result
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			result.Error = "request timed out"
		} else {
			result.Error = err.Error()
		}
		return result
	}
	defer resp.Body.Close()
	result.HTTPStatus = resp.StatusCode

	var body handlers.HealthCheck
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		result.Error = fmt.Sprintf("invalid response: %v", err)
		return result
	}
	result.Status = body.Status
	result.Checks = body.Checks
	result.IsHealthy = resp.StatusCode == http.StatusOK && body.Status == "healthy"
	return result
}

func printHealthResult(cmd *cobra.Command, result HealthCheckResult) {
	out := cmd.OutOrStdout()
	status := result.Status
	if status == "" {
		status = "unreachable"
	}
	fmt.Fprintf(out, "%s: %s (%dms)\n", result.URL, status, result.LatencyMs)
	for name, check := range result.Checks {
		fmt.Fprintf(out, "  %-12s %s", name, check.Status)
		if check.Message != "" {
			fmt.Fprintf(out, "  %s", check.Message)
		}
		fmt.Fprintln(out)
	}
}
