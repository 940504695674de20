package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prostore-labs/storefront-backend/api/controllers"
	webhookcontrollers "github.com/prostore-labs/storefront-backend/api/controllers/webhooks"
	"github.com/prostore-labs/storefront-backend/api/middleware"
	"github.com/prostore-labs/storefront-backend/internal/cart"
	"github.com/prostore-labs/storefront-backend/internal/catalog"
	"github.com/prostore-labs/storefront-backend/internal/orders"
	"github.com/prostore-labs/storefront-backend/internal/payments/manual"
	paypalpayments "github.com/prostore-labs/storefront-backend/internal/payments/paypal"
	stripepayments "github.com/prostore-labs/storefront-backend/internal/payments/stripe"
	"github.com/prostore-labs/storefront-backend/internal/users"
	stripewebhook "github.com/prostore-labs/storefront-backend/internal/webhooks/stripe"
	"github.com/prostore-labs/storefront-backend/pkg/config"
	"github.com/prostore-labs/storefront-backend/pkg/db"
	"github.com/prostore-labs/storefront-backend/pkg/enums"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
	"github.com/prostore-labs/storefront-backend/pkg/redis"
	"github.com/prostore-labs/storefront-backend/pkg/stripe"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    db.Pinger
	RedisPinger redis.Pinger

	CatalogService catalog.Service
	CartService    cart.Service
	UsersService   users.Service
	OrdersService  orders.Service

	PayPalService paypalpayments.Service
	StripeService stripepayments.Service
	ManualService manual.Service

	StripeClient       *stripe.Client
	StripeWebhookSvc   *stripewebhook.Service
	StripeWebhookGuard *stripewebhook.IdempotencyGuard
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(p)))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhookSvc, p.StripeClient, p.StripeWebhookGuard, logg))
	})

	// Public storefront surface. The session cart cookie keeps anonymous
	// shoppers addressable.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionCart())

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(p.CatalogService, logg))
			r.Get("/latest", controllers.LatestProducts(p.CatalogService, logg))
			r.Get("/{slug}", controllers.GetProductBySlug(p.CatalogService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(optionalAuth(cfg, logg))
			r.Get("/", controllers.GetCart(p.CartService, logg))
			r.Post("/items", controllers.AddCartItem(p.CartService, logg))
			r.Delete("/items/{productID}", controllers.RemoveCartItem(p.CartService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/cart/merge", controllers.MergeCart(p.CartService, logg))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.GetProfile(p.UsersService, logg))
				r.Put("/address", controllers.UpdateAddress(p.UsersService, logg))
				r.Put("/payment-method", controllers.UpdatePaymentMethod(p.UsersService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.CreateOrder(p.OrdersService, logg))
				r.Get("/", controllers.ListMyOrders(p.OrdersService, logg))
				r.Get("/{orderID}", controllers.GetOrder(p.OrdersService, logg))

				r.Post("/{orderID}/paypal", controllers.PayPalInitiate(p.PayPalService, logg))
				r.Post("/{orderID}/paypal/capture", controllers.PayPalCapture(p.PayPalService, logg))
				r.Post("/{orderID}/stripe/intent", controllers.StripeInitiate(p.StripeService, logg))
				r.Post("/{orderID}/stripe/verify", controllers.StripeVerify(p.StripeService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(p.OrdersService, logg))
			r.Delete("/{orderID}", controllers.AdminDeleteOrder(p.OrdersService, logg))
			r.Post("/{orderID}/deliver", controllers.AdminMarkDelivered(p.OrdersService, logg))
			r.Post("/{orderID}/settle-cash", controllers.AdminSettleCashOrder(p.ManualService, logg))
		})
	})

	return r
}

func readinessDeps(p RouterParams) map[string]controllers.Pinger {
	return map[string]controllers.Pinger{
		"database": p.DBPinger,
		"redis":    p.RedisPinger,
	}
}

// optionalAuth seeds the user context when a bearer token is present but
// lets anonymous requests straight through. Cart endpoints serve both.
func optionalAuth(cfg *config.Config, logg *logger.Logger) func(http.Handler) http.Handler {
	authed := middleware.Auth(cfg.JWT, logg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			authed(next).ServeHTTP(w, r)
		})
	}
}
