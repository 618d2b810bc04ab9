package handlers

import (
	"net/http"

	"github.com/lusopay/paypay-gateway/internal/application/services"
	"github.com/lusopay/paypay-gateway/internal/interfaces/rest"
)

type webhookRequest struct {
	HookAction string                    `json:"hookAction"`
	Payments   []services.WebhookPayment `json:"payments"`
}

type webhookResponse struct {
	Success bool `json:"success"`
}

// Webhook receives batched payment notifications from the processor.
// The response status is the worst per-payment status of the batch; a
// non-200 answer triggers the processor's redelivery.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("malformed webhook payload", "error", err)
		rest.WriteJSON(w, http.StatusBadRequest, webhookResponse{Success: false})
		return
	}

	status := h.dispatcher.Handle(r.Context(), req.HookAction, req.Payments)
	rest.WriteJSON(w, status, webhookResponse{Success: status == http.StatusOK})
}

// CustomerCancel handles the redirect back from the processor's hosted
// page when the customer aborts. It settles the pending records and sends
// the customer to the shop's order page.
func (h *Handlers) CustomerCancel(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		rest.WriteJSON(w, http.StatusBadRequest, webhookResponse{Success: false})
		return
	}

	viewURL, err := h.checkout.CancelByCustomer(r.Context(), orderID)
	if err != nil {
		h.logger.Error("customer cancel failed", "order_id", orderID, "error", err)
		rest.WriteError(w, err)
		return
	}

	http.Redirect(w, r, viewURL, http.StatusFound)
}
