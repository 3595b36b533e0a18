package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kaifgrit/Rifakat/internal/auth"
	"github.com/kaifgrit/Rifakat/internal/service"
	"github.com/kaifgrit/Rifakat/pkg/health"
	"github.com/kaifgrit/Rifakat/pkg/middleware"
)

// ServiceName labels HTTP metrics and traces.
const ServiceName = "catalog-api"

// RouterConfig holds the router settings that come from configuration.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	LoginPerMinute    int
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all catalog routes registered. ctx
// bounds the background work of the login rate limiter. A nil searcher
// leaves out the search endpoint.
func NewRouter(
	ctx context.Context,
	productService *service.ProductService,
	searcher ProductSearcher,
	authenticator *auth.Authenticator,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS, logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/", Root)
	r.Get("/api/test", APITest)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	authHandler := NewAuthHandler(authenticator, logger)
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, middleware.RateLimitConfig{PerMinute: cfg.LoginPerMinute}, logger))
		r.Post("/login", authHandler.Login)
	})

	productHandler := NewProductHandler(productService, logger)
	protect := middleware.Auth(jwtManager.TokenValidator())

	r.Route("/api/products", func(r chi.Router) {
		r.With(middleware.CacheControl(60)).Get("/", productHandler.ListProducts)
		if searcher != nil {
			r.Get("/search", NewSearchHandler(searcher, logger).Search)
		}

		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Use(middleware.RequestLogger(logger))

			r.Post("/", productHandler.CreateProduct)
			// Registered before /{id} so "batch" is never read as an id.
			r.Delete("/batch", productHandler.BatchDeleteProducts)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
		})

		r.With(middleware.CacheControl(60)).Get("/{id}", productHandler.GetProduct)
	})

	return r
}
