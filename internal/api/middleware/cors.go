package middleware

import (
	"net/http"

	"github.com/hackhub-dev/server/internal/config"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// CORS lets the browser client call the API. Development without an explicit origin
// list accepts any origin; otherwise only listed origins are echoed back.
func CORS(cfg config.CORSConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	if cfg.AllowAllOrigins {
		options.AllowedOrigins = nil
		options.AllowOriginFunc = func(string) bool { return true }
	}

	c := cors.New(options)
	return func(next http.Handler) http.Handler {
		handler := c.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && !cfg.AllowAllOrigins && !c.OriginAllowed(r) {
				logger.Warn().
					Str("origin", origin).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("CORS request rejected: origin not allowed")
			}
			handler.ServeHTTP(w, r)
		})
	}
}
