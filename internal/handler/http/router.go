package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gamingty/storefront/internal/service"
	"github.com/gamingty/storefront/pkg/health"
	"github.com/gamingty/storefront/pkg/middleware"
)

// RouterConfig bundles the collaborators the router wires together.
type RouterConfig struct {
	CartService     *service.CartService
	WishlistService *service.WishlistService
	HealthHandler   *health.Handler
	Logger          *slog.Logger
	CORS            middleware.CORSConfig
	PprofCIDRs      []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	cartHandler := NewCartHandler(cfg.CartService, cfg.Logger)
	wishlistHandler := NewWishlistHandler(cfg.WishlistService, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Session())
		r.Use(middleware.RequestLogger(cfg.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.GetWishlist)
			r.Post("/sync", wishlistHandler.SyncWishlist)

			r.Post("/products", wishlistHandler.AddProduct)
			r.Get("/products/{productId}", wishlistHandler.GetProductStatus)
			r.Post("/products/{productId}/move", wishlistHandler.MoveProduct)

			r.Post("/categories", wishlistHandler.AddCategory)
			r.Put("/categories/{category}", wishlistHandler.RenameCategory)
			r.Delete("/categories/{category}", wishlistHandler.DeleteCategory)
			r.Delete("/categories/{category}/products/{productId}", wishlistHandler.RemoveProduct)
		})
	})

	return r
}
