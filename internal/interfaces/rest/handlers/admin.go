package handlers

import (
	"net/http"

	"github.com/lusopay/paypay-gateway/internal/interfaces/rest"
)

type subscribeRequest struct {
	CallbackURL string `json:"callback_url"`
}

type subscribeResponse struct {
	Success bool `json:"success"`
}

// Reconcile runs a poll sweep on demand and reports how many payments
// settled, mirroring the periodic worker.
func (h *Handlers) Reconcile(w http.ResponseWriter, r *http.Request) {
	counts := h.reconciler.ReconcilePending(r.Context())
	rest.WriteJSON(w, http.StatusOK, counts)
}

// SubscribeWebhooks registers this service's webhook endpoint with the
// processor for every payment action.
func (h *Handlers) SubscribeWebhooks(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := rest.DecodeJSON(r, &req); err == nil && req.CallbackURL != "" {
		if err := h.subscription.SubscribeAll(r.Context(), req.CallbackURL); err != nil {
			rest.WriteError(w, err)
			return
		}
		rest.WriteJSON(w, http.StatusOK, subscribeResponse{Success: true})
		return
	}

	if err := h.subscription.SubscribeDefault(r.Context()); err != nil {
		rest.WriteError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, subscribeResponse{Success: true})
}
