package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/delish-app/tiffin-backend/api/controllers"
	cartcontrollers "github.com/delish-app/tiffin-backend/api/controllers/cart"
	ordercontrollers "github.com/delish-app/tiffin-backend/api/controllers/orders"
	subscriptioncontrollers "github.com/delish-app/tiffin-backend/api/controllers/subscriptions"
	webhookcontrollers "github.com/delish-app/tiffin-backend/api/controllers/webhooks"
	"github.com/delish-app/tiffin-backend/api/middleware"
	"github.com/delish-app/tiffin-backend/internal/admin"
	"github.com/delish-app/tiffin-backend/internal/auth"
	"github.com/delish-app/tiffin-backend/internal/cart"
	"github.com/delish-app/tiffin-backend/internal/catalog"
	checkoutsvc "github.com/delish-app/tiffin-backend/internal/checkout"
	"github.com/delish-app/tiffin-backend/internal/orders"
	subscriptionsvc "github.com/delish-app/tiffin-backend/internal/subscriptions"
	"github.com/delish-app/tiffin-backend/internal/users"
	"github.com/delish-app/tiffin-backend/pkg/auth/session"
	"github.com/delish-app/tiffin-backend/pkg/config"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	"github.com/delish-app/tiffin-backend/pkg/logger"
)

// KeyStore backs idempotency records and auth rate limit counters.
type KeyStore interface {
	middleware.ReplayStore
	middleware.WindowLimiter
}

type requestObserver interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
}

// Params holds everything the HTTP surface is built from. Nil services
// answer with an internal error; a nil StripeWebhook skips the webhook route.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Ready    map[string]controllers.Pinger
	Sessions session.AccessSessionChecker
	Store    KeyStore
	Metrics  requestObserver
	Gatherer prometheus.Gatherer

	Auth          auth.Service
	Users         users.Service
	Catalog       catalog.Service
	Cart          cart.Service
	Checkout      checkoutsvc.Service
	Orders        orders.Service
	Subscriptions subscriptionsvc.Service
	Admin         admin.Service

	StripeWebhook webhookcontrollers.StripeWebhookService
	StripeEvents  webhookcontrollers.EventVerifier
	WebhookGuard  webhookcontrollers.WebhookGuard
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if p.Metrics != nil {
		r.Use(middleware.Metrics(p.Metrics))
	}
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins, cfg.Cart.SessionHeader))

	var limiter middleware.WindowLimiter
	if p.Store != nil {
		limiter = p.Store
	}
	loginLimit := middleware.RateLimit(middleware.LoginRule(cfg.AuthRateLimit), limiter, logg)
	registerLimit := middleware.RateLimit(middleware.RegisterRule(cfg.AuthRateLimit), limiter, logg)

	var idempotencyStore middleware.ReplayStore
	if p.Store != nil {
		idempotencyStore = p.Store
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Ready))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	if p.StripeWebhook != nil && p.StripeEvents != nil && p.WebhookGuard != nil {
		r.Post("/api/v1/webhooks/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhook, p.StripeEvents, p.WebhookGuard, logg))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimit).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.With(registerLimit).
				With(middleware.Idempotency(idempotencyStore, logg)).
				Post("/register", controllers.AuthRegister(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
		})

		// Public reads; a valid token still identifies owners and admins.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, p.Sessions, logg))

			r.Get("/restaurants", controllers.RestaurantList(p.Catalog, logg))
			r.Get("/restaurants/{restaurantId}", controllers.RestaurantGet(p.Catalog, logg))
			r.Get("/restaurants/{restaurantId}/menu", controllers.MenuList(p.Catalog, logg))
			r.Get("/menu/{itemId}", controllers.MenuItemGet(p.Catalog, logg))
			r.Get("/plans", controllers.PlanList(p.Subscriptions, logg))
			r.Post("/plans/quote", controllers.PlanQuote(p.Subscriptions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.CartSession(cfg.Cart.SessionHeader, logg))
				r.Get("/", cartcontrollers.CartFetch(p.Cart, logg))
				r.Delete("/", cartcontrollers.CartClear(p.Cart, logg))
				r.Get("/totals", cartcontrollers.CartTotals(p.Checkout, logg))
				r.Post("/items", cartcontrollers.CartAddItem(p.Cart, logg))
				r.Put("/items/{itemId}", cartcontrollers.CartUpdateQuantity(p.Cart, logg))
				r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(p.Cart, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Get("/users/me", controllers.UserProfile(p.Users, logg))
			r.Put("/users/me", controllers.UserUpdateProfile(p.Users, logg))

			r.With(middleware.CartSession(cfg.Cart.SessionHeader, logg)).
				Post("/checkout", controllers.Checkout(p.Checkout, p.Users, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(p.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(p.Orders, logg))
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/", subscriptioncontrollers.Create(p.Subscriptions, logg))
				r.Get("/", subscriptioncontrollers.List(p.Subscriptions, logg))
				r.Get("/{subscriptionId}", subscriptioncontrollers.Detail(p.Subscriptions, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleRestaurant, enums.RoleAdmin))
				r.Post("/restaurants", controllers.RestaurantCreate(p.Catalog, logg))
				r.Put("/restaurants/{restaurantId}", controllers.RestaurantUpdate(p.Catalog, logg))
				r.Post("/menu", controllers.MenuItemCreate(p.Catalog, logg))
				r.Put("/menu/{itemId}", controllers.MenuItemUpdate(p.Catalog, logg))
				r.Delete("/menu/{itemId}", controllers.MenuItemDelete(p.Catalog, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
		r.Use(middleware.Idempotency(idempotencyStore, logg))
		r.Get("/stats", controllers.AdminStats(p.Admin, logg))
		r.Get("/restaurants/pending", controllers.AdminPendingRestaurants(p.Admin, logg))
		r.Post("/restaurants/{restaurantId}/approve", controllers.AdminApproveRestaurant(p.Admin, logg))
		r.Get("/orders", controllers.AdminRecentOrders(p.Admin, logg))
		r.Get("/users", controllers.AdminUsers(p.Admin, logg))
	})

	return r
}
