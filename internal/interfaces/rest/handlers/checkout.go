package handlers

import (
	"net/http"
	"strconv"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/domain"
	"github.com/lusopay/paypay-gateway/internal/interfaces/rest"
)

type initiatePaymentRequest struct {
	OrderID string `json:"order_id"`
	Method  string `json:"method"`
}

type initiatePaymentResponse struct {
	Result      string `json:"result"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// InitiatePayment starts a payment attempt for an order through the
// requested method and returns where to send the customer next.
func (h *Handlers) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req initiatePaymentRequest
	if err := rest.DecodeJSON(r, &req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	info, err := h.checkout.Initiate(r.Context(), req.OrderID, domain.Method(req.Method))
	if err != nil {
		h.logger.Error("payment initiation failed",
			"order_id", req.OrderID, "method", req.Method, "error", err)
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, initiatePaymentResponse{
		Result:      info.Result,
		RedirectURL: info.RedirectURL,
	})
}

// PaymentLayout returns the customer-facing payment instructions for a
// transaction: reference and entity for Multibanco, the hosted page link
// for the redirect methods.
func (h *Handlers) PaymentLayout(w http.ResponseWriter, r *http.Request) {
	transactionID, err := strconv.ParseInt(r.PathValue("transactionID"), 10, 64)
	if err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	layout, err := h.checkout.Layout(r.Context(), transactionID)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, layout)
}

// OrderNote returns the order's current gateway note and payment method,
// for the shop's order status page.
func (h *Handlers) OrderNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.checkout.Note(r.Context(), r.PathValue("orderID"))
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, note)
}

// AvailableMethods asks the processor which payment options apply to the
// given amount.
func (h *Handlers) AvailableMethods(w http.ResponseWriter, r *http.Request) {
	amountCents, err := domain.ParseAmount(r.URL.Query().Get("amount"))
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	options, err := h.checkout.AvailableMethods(r.Context(), amountCents)
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, map[string]any{"options": options})
}
