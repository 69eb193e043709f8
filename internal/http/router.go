package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(Sessions(h.cookieSecure, h.sessionTTL))

		r.Get("/", h.Products)
		r.Get("/products", h.Products)
		r.Get("/product-detail", h.ProductDetail)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.CartPage)
			r.Post("/items", h.AddToCart)
			r.Post("/items/{productId}/increase", h.IncreaseQuantity)
			r.Post("/items/{productId}/decrease", h.DecreaseQuantity)
			r.Post("/items/{productId}/remove", h.RemoveItem)
			r.Post("/clear", h.ClearCart)
			r.Post("/checkout", h.Checkout)
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.New(cors.Options{
				AllowedOrigins:   h.allowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Content-Type", middleware.RequestIDHeader},
				AllowCredentials: !allowsAnyOrigin(h.allowedOrigins),
			}).Handler)

			r.Post("/cart/items", h.APIAddItem)
			r.Get("/cart/count", h.APICartCount)
			r.Get("/cart", h.APICart)
		})
	})

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
