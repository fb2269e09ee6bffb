package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request correlation ID
	RequestIDKey contextKey = "request_id"
	routeKey     contextKey = "route"
	principalKey contextKey = "principal"
	authErrorKey contextKey = "auth_error"
)

// maxRequestIDLength bounds client-supplied ids before they reach logs.
const maxRequestIDLength = 128

// CorrelationID assigns a request id and a request-scoped logger carrying it.
// It must be the outermost middleware because it also installs the route holder.
func CorrelationID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", requestID)

			reqLogger := logger.With().Str("request_id", requestID).Logger()

			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			ctx = context.WithValue(ctx, routeKey, &routeHolder{})
			ctx = reqLogger.WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

type routeHolder struct {
	pattern string
}

// MarkRoute records the ServeMux pattern that matched, so outer middleware can label
// logs, spans and metrics by route instead of raw path.
func MarkRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if holder, ok := r.Context().Value(routeKey).(*routeHolder); ok {
			holder.pattern = r.Pattern
		}
		next.ServeHTTP(w, r)
	})
}

// RoutePattern returns the matched route pattern, or "" when no route matched yet.
func RoutePattern(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	if holder, ok := r.Context().Value(routeKey).(*routeHolder); ok {
		return holder.pattern
	}
	return ""
}
