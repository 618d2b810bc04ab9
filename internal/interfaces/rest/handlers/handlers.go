package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lusopay/paypay-gateway/internal/application/services"
	"github.com/lusopay/paypay-gateway/internal/worker"
)

// Handlers wires the HTTP surface: the processor-facing webhook and
// customer cancel callback, the shop-facing checkout API, and the
// operator endpoints.
type Handlers struct {
	dispatcher   *services.WebhookDispatcher
	checkout     *services.CheckoutService
	subscription *services.SubscriptionService
	reconciler   *worker.Reconciler
	logger       *slog.Logger
}

func NewHandlers(
	dispatcher *services.WebhookDispatcher,
	checkout *services.CheckoutService,
	subscription *services.SubscriptionService,
	reconciler *worker.Reconciler,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		dispatcher:   dispatcher,
		checkout:     checkout,
		subscription: subscription,
		reconciler:   reconciler,
		logger:       logger,
	}
}

// Routes registers all endpoints on the mux.
func (h *Handlers) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /paypay/webhook", h.Webhook)
	mux.HandleFunc("GET /paypay/cancel", h.CustomerCancel)

	mux.HandleFunc("POST /api/v1/payments", h.InitiatePayment)
	mux.HandleFunc("GET /api/v1/payments/{transactionID}", h.PaymentLayout)
	mux.HandleFunc("GET /api/v1/methods", h.AvailableMethods)
	mux.HandleFunc("GET /api/v1/orders/{orderID}/note", h.OrderNote)

	mux.HandleFunc("POST /api/v1/admin/reconcile", h.Reconcile)
	mux.HandleFunc("POST /api/v1/admin/webhooks", h.SubscribeWebhooks)

	mux.HandleFunc("GET /health", h.Health)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
