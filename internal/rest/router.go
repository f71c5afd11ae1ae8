package rest

import (
	"net/http"

	"daztao-be/internal/metrics"
	"daztao-be/internal/middleware"
)

type Handlers struct {
	Products *ProductHandler
	Orders   *OrderHandler
	Payments *PaymentHandler
	Admin    *AdminHandler
	Webhook  http.HandlerFunc
	Metrics  *metrics.Registry
}

// Register mounts every route on mux. Admin-only routes are wrapped in
// RequireAdmin; the session itself is attached by the auth middleware upstream.
func (h Handlers) Register(mux *http.ServeMux) {
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(fn)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	reg := h.Metrics
	if reg == nil {
		reg = metrics.Default
	}
	mux.Handle("GET /metrics", middleware.RequireAdmin(reg.Handler()))

	mux.HandleFunc("POST /admin/login", h.Admin.login)
	mux.HandleFunc("POST /admin/logout", h.Admin.logout)
	mux.Handle("GET /admin/stats", adminOnly(h.Admin.stats))

	mux.HandleFunc("GET /products", h.Products.list)
	mux.Handle("POST /products", adminOnly(h.Products.create))
	mux.HandleFunc("GET /products/{slug}", h.Products.get)
	mux.Handle("PUT /products/{slug}", adminOnly(h.Products.update))
	mux.Handle("DELETE /products/{slug}", adminOnly(h.Products.delete))

	mux.HandleFunc("POST /orders", h.Orders.create)
	mux.Handle("GET /orders", adminOnly(h.Orders.list))
	mux.HandleFunc("GET /orders/{id}", h.Orders.get)
	mux.HandleFunc("PUT /orders/{id}", h.Orders.update)
	mux.Handle("DELETE /orders/{id}", adminOnly(h.Orders.delete))
	mux.Handle("POST /orders/{id}/actions/{action}", adminOnly(h.Orders.transition))

	mux.HandleFunc("POST /payments/razorpay/orders", h.Payments.startCheckout)
	mux.HandleFunc("POST /payments/razorpay/verify", h.Payments.verify)
	if h.Webhook != nil {
		mux.HandleFunc("POST /webhooks/razorpay", h.Webhook)
	}
}
