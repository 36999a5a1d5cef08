package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	servertiming "github.com/mitchellh/go-server-timing"
	_ "github.com/rogerio-castellano/inventory-master/docs"
	"github.com/rogerio-castellano/inventory-master/internal/http/handlers"
	mw "github.com/rogerio-castellano/inventory-master/internal/http/middleware"
	"github.com/rogerio-castellano/inventory-master/internal/models"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func withServerTiming(next http.Handler) http.Handler {
	return servertiming.Middleware(next, nil)
}

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(mw.RequestLogger)

	r.Get("/healthz", handlers.HealthHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit)
		r.Post("/register", handlers.RegisterHandler)
		r.Post("/login", handlers.LoginHandler)
		r.Post("/refresh", handlers.RefreshHandler)
	})

	r.With(mw.AuthFromQuery).Get("/dashboard/stream", handlers.StreamDashboardHandler)

	r.Group(func(r chi.Router) {
		r.Use(mw.Auth)

		r.With(withServerTiming).Get("/dashboard", handlers.GetDashboardHandler)
		r.Post("/dashboard/refresh", handlers.RefreshDashboardHandler)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.GetProductsHandler)
			r.Post("/", handlers.CreateProductHandler)
			r.Post("/import", handlers.ImportProductsHandler)
			r.Get("/{id}", handlers.GetProductByIDHandler)
			r.Put("/{id}", handlers.UpdateProductHandler)
			r.Delete("/{id}", handlers.DeleteProductHandler)
			r.Post("/{id}/adjust", handlers.AdjustQuantityHandler)
			r.Get("/{id}/movements", handlers.GetMovementsHandler)
			r.Get("/{id}/movements/export", handlers.ExportMovementsHandler)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", handlers.GetCategoriesHandler)
			r.Post("/", handlers.CreateCategoryHandler)
			r.Get("/{id}", handlers.GetCategoryByIDHandler)
			r.Put("/{id}", handlers.UpdateCategoryHandler)
			r.Delete("/{id}", handlers.DeleteCategoryHandler)
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", handlers.GetSuppliersHandler)
			r.Post("/", handlers.CreateSupplierHandler)
			r.Get("/{id}", handlers.GetSupplierByIDHandler)
			r.Put("/{id}", handlers.UpdateSupplierHandler)
			r.Delete("/{id}", handlers.DeleteSupplierHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(mw.RequireRole(models.RoleAdmin))
			r.Get("/", handlers.GetUsersHandler)
			r.Put("/{id}/role", handlers.UpdateUserRoleHandler)
		})
	})

	return r
}
