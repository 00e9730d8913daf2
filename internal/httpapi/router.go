package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Session  *SessionHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Order    *OrderHandler
}

// NewRouter assembles the storefront facade: session lifecycle, cart
// mutations, the checkout workflow and the order/PIX sub-flow.
func NewRouter(h Handlers, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.Session.Get)
			r.Post("/login", h.Session.Login)
			r.Post("/logout", h.Session.Logout)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{productID}", h.Cart.UpdateQuantity)
			r.Delete("/items/{productID}", h.Cart.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.Checkout.Get)
			r.Post("/load", h.Checkout.Load)
			r.Put("/address", h.Checkout.SelectAddress)
			r.Put("/shipping", h.Checkout.SelectShipping)
			r.Post("/addresses", h.Checkout.AddAddress)
			r.Delete("/address-form", h.Checkout.CancelAddressForm)
			r.Post("/submit", h.Checkout.Submit)
		})

		r.Get("/orders", h.Order.List)
		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", h.Order.Get)
			r.Post("/pix", h.Order.GeneratePix)
			r.Post("/pix/copy", h.Order.CopyCode)
		})
	})

	return r
}
