package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cartloom/cartloom-backend/api/controllers"
	"github.com/cartloom/cartloom-backend/api/middleware"
	"github.com/cartloom/cartloom-backend/pkg/config"
	"github.com/cartloom/cartloom-backend/pkg/logger"
	redisclient "github.com/cartloom/cartloom-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	Auth        *middleware.Authenticator
	RateLimiter middleware.RateLimiter
	Idempotency redisclient.IdempotencyStore
	Registry    *prometheus.Registry

	Health      *controllers.HealthController
	AuthCtrl    *controllers.AuthController
	Cart        *controllers.CartController
	Checkout    *controllers.CheckoutController
	Orders      *controllers.OrdersController
	AdminOrders *controllers.AdminOrdersController
}

// New assembles the full router: health probes, the public store
// surface, the authenticated customer surface, and the admin console.
func New(deps Deps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer(deps.Logger))
	router.Use(middleware.RequestID(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health/live", deps.Health.Live)
	router.Get("/health/ready", deps.Health.Ready)
	if deps.Registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(deps.RateLimiter, deps.Config.AuthRateLimit, deps.Logger)).
				Post("/login", deps.AuthCtrl.Login)
			r.With(deps.Auth.RequireAuth).Post("/logout", deps.AuthCtrl.Logout)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(deps.Auth.OptionalAuth)
			r.Use(middleware.CartIdentity(deps.Config.GuestCart, deps.Logger))

			r.Get("/", deps.Cart.Get)
			r.Post("/items", deps.Cart.AddItem)
			r.Patch("/items/{itemId}", deps.Cart.UpdateItem)
			r.Delete("/items/{itemId}", deps.Cart.RemoveItem)
			r.Delete("/", deps.Cart.Clear)
			r.With(deps.Auth.RequireAuth).Post("/transfer", deps.Cart.Transfer)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireAuth)

			r.With(middleware.Idempotency(deps.Idempotency, "checkout", deps.Logger)).
				Post("/checkout", deps.Checkout.CreateOrder)
			r.With(middleware.Idempotency(deps.Idempotency, "checkout-verify", deps.Logger)).
				Post("/checkout/verify", deps.Checkout.VerifyPayment)

			r.Get("/orders", deps.Orders.List)
			r.Get("/orders/{orderId}", deps.Orders.Detail)
			r.Get("/orders/{orderId}/payment", deps.Orders.PendingPayment)
		})
	})

	router.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(deps.Auth.RequireAuth)
		r.Use(deps.Auth.RequireRole("admin"))

		r.Get("/orders", deps.AdminOrders.List)
		r.Get("/orders/{orderId}", deps.AdminOrders.Detail)
		r.With(middleware.Idempotency(deps.Idempotency, "admin-order-status", deps.Logger)).
			Post("/orders/{orderId}/status", deps.AdminOrders.UpdateStatus)
	})

	return router
}
