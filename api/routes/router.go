package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tubeboost/storefront-backend/api/controllers"
	"github.com/tubeboost/storefront-backend/api/middleware"
	"github.com/tubeboost/storefront-backend/internal/cart"
	"github.com/tubeboost/storefront-backend/internal/orders"
	"github.com/tubeboost/storefront-backend/internal/payments"
	"github.com/tubeboost/storefront-backend/internal/receipts"
	"github.com/tubeboost/storefront-backend/pkg/config"
	"github.com/tubeboost/storefront-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type cartService interface {
	AddItem(ctx context.Context, sessionID string, input cart.AddItemInput) (cart.Item, cart.Snapshot, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (cart.Snapshot, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (cart.Snapshot, error)
	Clear(ctx context.Context, sessionID string) (cart.Snapshot, error)
	Get(ctx context.Context, sessionID string) (cart.Snapshot, error)
	LoadingOperations(sessionID string) []string
}

type orderAssembler interface {
	Assemble(ctx context.Context, input orders.AssembleInput) (*orders.Result, error)
}

type paymentService interface {
	CreateIntent(ctx context.Context, sessionID string, buyer payments.Buyer) (*payments.Intent, error)
	Capture(ctx context.Context, input payments.CaptureInput) (*receipts.Receipt, error)
	Cancel(ctx context.Context, sessionID, intentID string) (*payments.Cancellation, error)
}

// NewRouter assembles the full HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	redisP pinger,
	shopP pinger,
	limiter rateLimiter,
	cartSvc cartService,
	assembler orderAssembler,
	paymentSvc paymentService,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP, shopP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	paymentPolicy := middleware.NewRateLimitPolicy(
		"payment",
		cfg.Checkout.PaymentRateWindow,
		cfg.Checkout.PaymentRateLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Post("/validate/url", controllers.ValidateURL(logg))
		r.Post("/pricing/quote", controllers.PricingQuote(logg))
		r.Get("/offerings", controllers.ListOfferings())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartSvc, logg))
			r.Get("/operations", controllers.CartOperations(cartSvc))
			r.Delete("/", controllers.CartClear(cartSvc, logg))
			r.Post("/items", controllers.CartAddItem(cartSvc, logg))
			r.Patch("/items/{itemID}", controllers.CartUpdateItem(cartSvc, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(cartSvc, logg))
		})

		r.Post("/checkout/orders", controllers.CheckoutCreateOrder(assembler, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.RateLimit(paymentPolicy, limiter, logg))
			r.Post("/intents", controllers.PaymentsCreateIntent(paymentSvc, logg))
			r.Post("/intents/{intentID}/capture", controllers.PaymentsCapture(paymentSvc, logg))
			r.Post("/intents/{intentID}/cancel", controllers.PaymentsCancel(paymentSvc, logg))
		})
	})

	return r
}
