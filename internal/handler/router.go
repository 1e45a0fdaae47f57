package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	custommiddleware "github.com/mmeshcher/eshop-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса магазина.
func (h *Handler) SetupRouter(corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.GetProducts)
		r.Get("/search", h.SearchProducts)
		r.Get("/{id}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware, h.authMiddleware.RequireAdmin)

			r.Post("/", h.CreateProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/", h.CreateOrder)
		r.Get("/my-orders", h.GetMyOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/payment", h.SubmitPayment)
	})

	r.Route("/downloads", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/{orderID}", h.GetDownloadFiles)
		r.Get("/{orderID}/files/{fileID}", h.DownloadFile)
	})

	r.Route("/config", func(r chi.Router) {
		r.Get("/", h.GetSiteConfig)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware, h.authMiddleware.RequireAdmin)
			r.Put("/social-links", h.UpdateSocialLinks)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware, h.authMiddleware.RequireAdmin)

		r.Get("/analytics", h.GetAnalytics)
		r.Get("/orders", h.GetAllOrders)
		r.Post("/orders/{id}/files", h.AttachOrderFile)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
