package api

import (
	"log/slog"
	"net/http"

	"github.com/fianka/shop-api/internal/api/handlers"
	appmiddleware "github.com/fianka/shop-api/internal/api/middleware"
	"github.com/fianka/shop-api/internal/mailer"
	"github.com/fianka/shop-api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Logger     *slog.Logger
	Orders     *store.OrderStore
	Products   *store.ProductStore
	Users      *store.UserStore
	Newsletter *store.NewsletterStore
	Mailer     mailer.Sender
}

// NewRouter wires every endpoint of the storefront API.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(appmiddleware.Logger(deps.Logger))

	orderHandler := handlers.NewOrderHandler(deps.Orders)
	productHandler := handlers.NewProductHandler(deps.Products)
	authHandler := handlers.NewAuthHandler(deps.Users)
	newsletterHandler := handlers.NewNewsletterHandler(deps.Newsletter, deps.Mailer, deps.Logger)
	invoiceHandler := handlers.NewInvoiceHandler(deps.Orders, deps.Mailer, deps.Logger)
	adminHandler := handlers.NewAdminHandler(deps.Orders, deps.Newsletter)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", orderHandler.Create)
		r.Get("/", orderHandler.ListByUser)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", productHandler.List)
		r.Get("/search", productHandler.Search)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Post("/newsletter", newsletterHandler.Subscribe)
	r.Post("/invoice-email", invoiceHandler.Send)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders", adminHandler.ListOrders)
		r.Get("/orders/stats", adminHandler.OrderStats)
		r.Patch("/orders/{id}/status", adminHandler.UpdateOrderStatus)
		r.Get("/newsletter", adminHandler.ListSubscribers)
		r.Get("/newsletter/stats", adminHandler.SubscriberStats)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
