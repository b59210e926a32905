package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/plgdemo/internal/api/middleware"
	"github.com/eldtechnologies/plgdemo/internal/crm"
	"github.com/eldtechnologies/plgdemo/internal/handlers"
	"github.com/eldtechnologies/plgdemo/internal/store"
)

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	RateLimit      middleware.RateLimiterConfig
	TrustedProxies []string // peers whose X-Forwarded-For is honoured
	StaticDir      string // defaults to staticDir()
}

// NewRouter creates and configures the HTTP router. redisStore may be nil,
// in which case rate limiting is disabled.
func NewRouter(logger zerolog.Logger, db store.DataStore, redisStore *store.RedisStore, forwarder crm.Forwarder, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(64 * 1024))
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.NewTrustedProxies(opts.TrustedProxies, logger).Handler)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	if redisStore != nil {
		limiter := middleware.NewRateLimiter(redisStore.Client(), logger, opts.RateLimit)
		r.Use(limiter.Middleware)
	} else {
		logger.Info().Msg("rate limiting disabled: no redis configured")
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(db, redisStore, forwarder, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Front end
	static := opts.StaticDir
	if static == "" {
		static = staticDir()
	}
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, static+"/index.html")
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(static))))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Root)
		r.Post("/event", h.RecordEvent)
		r.Get("/events", h.ListEvents)
		r.Post("/contact-message", h.SubmitContactMessage)
		r.Get("/contact-messages", h.ListContactMessages)
		r.Get("/products", h.ListProducts)
	})

	return r
}

// staticDir returns the path to static files directory.
func staticDir() string {
	// Check if running from app directory (production container)
	if _, err := os.Stat("/app/web/static"); err == nil {
		return "/app/web/static"
	}
	return "web/static"
}
