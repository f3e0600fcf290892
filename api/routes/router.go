package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/novathreads/storefront-backend/api/controllers"
	"github.com/novathreads/storefront-backend/api/middleware"
	"github.com/novathreads/storefront-backend/api/responses"
	"github.com/novathreads/storefront-backend/internal/auth"
	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/internal/newsletter"
	"github.com/novathreads/storefront-backend/pkg/config"
	"github.com/novathreads/storefront-backend/pkg/enums"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/metrics"
	"github.com/novathreads/storefront-backend/pkg/ratelimit"
)

const (
	authRateLimitMessage       = "Too many authentication attempts, please try again later."
	newsletterRateLimitMessage = "Too many newsletter requests, please try again later."
	routeNotFoundMessage       = "Route not found"
)

// Dependencies are the services and infrastructure the router mounts.
type Dependencies struct {
	Config     *config.Config
	Logger     *logger.Logger
	Metrics    *metrics.HTTPMetrics
	RateStore  ratelimit.Store
	Readiness  map[string]controllers.Pinger
	Catalog    catalog.Service
	Auth       auth.Service
	Newsletter newsletter.Service
	Now        func() time.Time
}

// NewRouter mounts the storefront API under /api.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.App.FrontendURL),
	)
	if cfg.App.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.App.RequestTimeout))
	}

	// config.Load rejects malformed entries; a hand-built config falls back
	// to trusting no proxy.
	proxies, err := cfg.App.TrustedProxyPrefixes()
	if err != nil {
		logg.Error(context.Background(), "router.trusted_proxies_invalid", err)
		proxies = nil
	}
	authPolicy := middleware.NewRateLimitPolicy("auth", cfg.RateLimit.AuthWindow, cfg.RateLimit.AuthLimit, authRateLimitMessage).
		TrustProxies(proxies)
	newsletterPolicy := middleware.NewRateLimitPolicy("newsletter", cfg.RateLimit.NewsletterWindow, cfg.RateLimit.NewsletterLimit, newsletterRateLimitMessage).
		TrustProxies(proxies)

	requireAuth := middleware.Auth(cfg.JWT, logg)
	requireAdmin := middleware.RequireRole(enums.UserRoleAdmin, logg)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, routeNotFoundMessage))
	})

	r.Get("/health", controllers.HealthLive(deps.Now))
	r.Get("/health/ready", controllers.HealthReady(deps.Readiness, logg))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(authPolicy, deps.RateStore, deps.Metrics, logg))
		r.Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(requireAuth).Get("/profile", controllers.AuthProfile(deps.Auth, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/featured", controllers.FeaturedProducts(deps.Catalog, logg))
		r.Get("/{id}", controllers.GetProduct(deps.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Post("/", controllers.CreateProduct(deps.Catalog, logg))
			r.Put("/{id}", controllers.UpdateProduct(deps.Catalog, logg))
			r.Delete("/{id}", controllers.DeleteProduct(deps.Catalog, logg))
		})
	})

	r.Route("/api/newsletter", func(r chi.Router) {
		r.Use(middleware.RateLimit(newsletterPolicy, deps.RateStore, deps.Metrics, logg))
		r.Post("/subscribe", controllers.NewsletterSubscribe(deps.Newsletter, logg))
		r.Post("/unsubscribe", controllers.NewsletterUnsubscribe(deps.Newsletter, logg))
		r.With(requireAuth, requireAdmin).Get("/subscribers", controllers.NewsletterSubscribers(deps.Newsletter, logg))
	})

	return r
}
