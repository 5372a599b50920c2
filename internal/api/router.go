package api

import (
	"net/http"

	"gc-invoice-driver/internal/middleware"
)

// NewRouter wires the HTTP surface: payment operations, mandate management
// and the webhook receiver, all behind auth, rate limiting and request
// logging.
func NewRouter(h *Handlers, webhook http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /payments/charge", h.Charge)
	mux.HandleFunc("GET /payments/gocardless/complete", h.Complete)
	mux.HandleFunc("POST /payments/refund", h.Refund)
	mux.HandleFunc("GET /payments/methods", h.Methods)
	mux.HandleFunc("GET /payments/mandates", h.ListMandates)
	mux.HandleFunc("POST /payments/sources", h.CreatePaymentSource)

	// Webhooks authenticate by signature, not session, but still pass
	// through the chain so deliveries are logged and rate limited.
	mux.Handle("POST /webhooks/gocardless", webhook)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RateLimitMiddleware(handler)
	handler = middleware.AuthMiddleware(handler)
	return handler
}
