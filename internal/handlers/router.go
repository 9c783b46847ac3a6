package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mahendrakumar19/streamgate/internal/handlers/middleware"
	"github.com/Mahendrakumar19/streamgate/internal/logger"
)

// RouterConfig holds the pieces the router wires together
type RouterConfig struct {
	Issuer  *IssuerHandler
	Stream  *StreamHandler
	Session func(http.Handler) http.Handler

	// Origins allowed to play video from browsers, "*" when empty
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig, logger logger.Logger) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RecoverMiddleware(logger))
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.MetricsMiddleware())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Token endpoints require the platform session cookie
	r.Group(func(gr chi.Router) {
		gr.Use(cfg.Session)
		gr.Get("/api/video/token", cfg.Issuer.Issue)
		gr.Post("/api/video/token", cfg.Issuer.Refresh)
	})

	// Stream endpoint authenticates with the access token itself.
	// CORS is restricted to GET and OPTIONS, players never need more.
	r.Group(func(gr chi.Router) {
		gr.Use(cors.Handler(cors.Options{
			AllowedOrigins:     origins,
			AllowedMethods:     []string{"GET", "OPTIONS"},
			AllowedHeaders:     []string{"Accept", "Origin", "Range"},
			MaxAge:             300,
			OptionsPassthrough: true,
		}))
		gr.Get("/api/video/stream", cfg.Stream.Serve)
		gr.Options("/api/video/stream", cfg.Stream.Preflight)
	})

	return r
}
