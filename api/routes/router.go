package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/limited-access-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/limited-access-backend/api/controllers/webhooks"
	"github.com/angelmondragon/limited-access-backend/api/middleware"
	"github.com/angelmondragon/limited-access-backend/api/responses"
	"github.com/angelmondragon/limited-access-backend/internal/waitlist"
	"github.com/angelmondragon/limited-access-backend/pkg/config"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
	"github.com/angelmondragon/limited-access-backend/pkg/metrics"
)

// Params carries everything the router wires into handlers. Optional
// dependencies (RateLimiter, DeliveryGuard, Gatherer) may be nil.
type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	Waitlist       waitlist.Service
	Verifier       middleware.WebhookVerifier
	Dispatcher     webhookcontrollers.EventDispatcher
	DeliveryGuard  webhookcontrollers.DeliveryGuard
	RateLimiter    middleware.RateLimitStore
	WebhookMetrics *metrics.WebhookMetrics
	Gatherer       prometheus.Gatherer
	Readiness      []controllers.ReadinessCheck
	Clock          func() time.Time
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.FrontendURL),
		middleware.Debug(cfg.App.IsDev()),
		middleware.RawBody(middleware.WebhookPathPrefix, cfg.Shopify.MaxBodyBytes, logg),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteNotFoundRoute(w, r.URL.Path)
	})

	r.Get("/", controllers.Root())
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/health", func(r chi.Router) {
		r.Get("/", controllers.HealthLive(cfg, p.Clock))
		r.Get("/ready", controllers.HealthReady(logg, p.Readiness...))
	})

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/health", webhookcontrollers.WebhookHealth(p.Clock))

		webhook := webhookcontrollers.ShopifyWebhook(p.Dispatcher, p.DeliveryGuard, p.WebhookMetrics, logg)
		r.Route("/shopify", func(r chi.Router) {
			r.With(middleware.ShopifyHMAC(p.Verifier, enums.WebhookKindOrderCreated, logg, p.WebhookMetrics)).
				Post("/order/created", webhook)
			r.With(middleware.ShopifyHMAC(p.Verifier, enums.WebhookKindCustomerCreated, logg, p.WebhookMetrics)).
				Post("/customer/created", webhook)
		})
	})

	adminPolicy := middleware.NewRateLimitPolicy("admin", cfg.Admin.RateLimitWindow, cfg.Admin.RateLimitPerIP)
	signupPolicy := middleware.NewRateLimitPolicy("signup", cfg.Admin.RateLimitWindow, cfg.Admin.RateLimitPerIP)
	r.Route("/api/waitlist", func(r chi.Router) {
		// joining the waitlist is the public storefront form
		r.With(middleware.RateLimit(signupPolicy, p.RateLimiter, logg)).
			Post("/", controllers.WaitlistCreate(p.Waitlist, logg))

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.RateLimit(adminPolicy, p.RateLimiter, logg),
				middleware.AdminAuth(cfg.Admin, logg),
			)
			r.Get("/", controllers.WaitlistList(p.Waitlist, logg))
			r.Get("/stats/summary", controllers.WaitlistStats(p.Waitlist, logg))
			r.Get("/{id}", controllers.WaitlistGet(p.Waitlist, logg))
			r.Put("/{id}", controllers.WaitlistUpdateStatus(p.Waitlist, logg))
			r.Delete("/{id}", controllers.WaitlistDelete(p.Waitlist, logg))
		})
	})

	return r
}
