package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"stylegen/internal/http/handlers"
	"stylegen/internal/middleware"
)

// RouterOptions configures the cross-cutting middleware.
type RouterOptions struct {
	Logger          zerolog.Logger
	Requests        middleware.RequestObserver
	Metrics         http.Handler
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Base middleware
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger, opts.Requests),
		middleware.CORS(opts.AllowedOrigins),
	)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/styles", app.ListStyles)
		r.Get("/uploads", app.ListUploads)
		r.Get("/results/{id}", app.GetResult)

		r.Group(func(r chi.Router) {
			if opts.RateLimitPerMin > 0 {
				r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
			}
			r.Post("/generate", app.Generate)
			r.Post("/upload", app.Upload)
			r.Post("/apply_style", app.ApplyStyle)
			r.Post("/random_image", app.RandomImage)
		})
	})

	r.Get("/uploads/{name}", app.ServeUpload)
	r.Get("/generated/{name}", app.ServeGenerated)

	return r
}
