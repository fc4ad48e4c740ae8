package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ai-supervisor-foundry/foundry/internal/adapter/observability"
	"github.com/ai-supervisor-foundry/foundry/internal/config"
)

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{"*"}
	}
	if s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
// Every route is a read; the supervisor is driven through the CLI and the
// state blob, not through this server.
func BuildRouter(cfg config.Config, srv *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(Recoverer())
	r.Use(RequestID())
	r.Use(Timeout(30 * time.Second))
	r.Use(Tracing)
	r.Use(AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Status reads hit the store; rate limit them so a misbehaving dashboard
	// cannot starve the loop's own Redis round trips.
	r.Group(func(sr chi.Router) {
		sr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))
		sr.Get("/v1/status", srv.StatusHandler())
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })
	r.Get("/readyz", srv.ReadyzHandler())

	return SecurityHeaders(r)
}
