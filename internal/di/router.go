package di

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	_ "memories-backend/docs" // registers the OpenAPI document
	"memories-backend/internal/config"
	"memories-backend/internal/handlers"
	"memories-backend/internal/infrastructure/observability"
	"memories-backend/internal/middleware"
	appErrors "memories-backend/pkg/errors"
)

// RouterDeps lists what the router mounts.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector // nil disables /metrics
	Tracing bool
	Errors  *appErrors.ErrorHandler
	Guard   *middleware.Guard
	Auth    *handlers.AuthHandler
	Memory  *handlers.MemoryHandler
	Uploads *handlers.UploadHandler
	Health  *handlers.HealthHandler
}

// NewRouter builds the HTTP surface.
func NewRouter(d RouterDeps) *chi.Mux {
	cfg := d.Config
	r := chi.NewRouter()

	// Global middleware - applied to all routes
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(d.Errors.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	if d.Tracing {
		r.Use(observability.TracingMiddleware(cfg.Tracing.ServiceName))
	}
	if d.Metrics != nil {
		r.Use(observability.MetricsMiddleware(d.Metrics))
	}
	r.Use(middleware.BodyLimit(cfg.Server.MaxRequestSize, d.Errors.Handle))

	// Public routes
	r.Get("/health", d.Health.Check)
	r.Get("/ready", d.Health.Ready)
	if d.Metrics != nil {
		r.Handle(cfg.Metrics.Path, d.Metrics.Handler())
	}
	r.Get("/swagger/doc.json", swaggerDoc(d.Errors))
	r.Get("/uploads/{filename}", d.Uploads.Serve)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", d.Auth.Register)
		r.Post("/login", d.Auth.Login)
		r.Method(http.MethodGet, "/protected", d.Guard.Protect(d.Auth.Protected))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("api-routes"), d.Errors, d.Logger))

		r.Route("/memories", func(r chi.Router) {
			r.Method(http.MethodPost, "/", d.Guard.Protect(d.Memory.Create))
			r.Method(http.MethodGet, "/", d.Guard.Protect(d.Memory.List))
			r.Method(http.MethodGet, "/{id}", d.Guard.Protect(d.Memory.Get))
			r.Method(http.MethodPut, "/{id}", d.Guard.Protect(d.Memory.Update))
			r.Method(http.MethodDelete, "/{id}", d.Guard.Protect(d.Memory.Delete))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		d.Errors.Handle(w, r, appErrors.NewNotFoundError("Not found"))
	})

	return r
}

func swaggerDoc(errs *appErrors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			errs.Handle(w, r, appErrors.NewInternalError("OpenAPI document unavailable").WithCause(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}
}
